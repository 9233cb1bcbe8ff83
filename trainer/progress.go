package trainer

import "fmt"
import "io"
import "math"
import "strings"
import "time"

import "github.com/charmbracelet/lipgloss"

var progressColumns = []string{"Epoch", "Iteration", "Time Elapsed", "Mini-batch Accuracy", "Validation Accuracy",
	"Mini-batch Loss", "Validation Loss", "Base Learning Rate"}

const progressWidth = 14

func rule(w io.Writer) {
	fmt.Fprintf(w, "|%s|\n", strings.Repeat("=", len(progressColumns)*(progressWidth+3)-1))
}

func printHeader(w io.Writer) {
	rule(w)
	var top, bottom []string
	for _, c := range progressColumns {
		first, second := c, ""
		if i := strings.LastIndex(c, " "); i > 0 {
			first, second = c[:i], c[i+1:]
		}
		top = append(top, center(first))
		bottom = append(bottom, center(second))
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(top, " | "))
	fmt.Fprintf(w, "| %s |\n", strings.Join(bottom, " | "))
	rule(w)
}

var cellStyle = lipgloss.NewStyle().Width(progressWidth).Align(lipgloss.Center)

// center renders s in a fixed width cell, longer text is cut
func center(s string) string {
	if len(s) > progressWidth {
		s = s[:progressWidth]
	}
	return cellStyle.Render(s)
}

func percent(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.2f%%", 100*v)
}

func number(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return fmt.Sprintf("%.4f", v)
}

func clock(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%02d:%02d:%02d", h, m, d/time.Second)
}

func printRow(w io.Writer, it *Iteration) {
	cells := []string{
		fmt.Sprint(it.Epoch),
		fmt.Sprint(it.Iteration),
		clock(it.Elapsed),
		percent(it.TrainAccuracy),
		percent(it.ValidationAccuracy),
		number(it.TrainLoss),
		number(it.ValidationLoss),
		fmt.Sprintf("%.4g", it.LearnRate),
	}
	for i := range cells {
		cells[i] = center(cells[i])
	}
	fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | "))
}
