package metrics

import "fmt"

import "github.com/charmbracelet/lipgloss"
import "github.com/charmbracelet/lipgloss/table"

var titleStyle = lipgloss.NewStyle().Bold(true)

func ratio(v float64, defined bool) string {
	if !defined {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

// Table renders the accuracy and per-class metrics for the console
func (r *Report) Table() string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Class", "Precision", "Recall", "F1", "TP", "FP", "FN", "Support")
	for _, m := range r.PerClass {
		t.Row(m.Class,
			ratio(m.Precision, m.PrecisionDefined),
			ratio(m.Recall, m.RecallDefined),
			fmt.Sprintf("%.4f", m.F1),
			fmt.Sprint(m.TP), fmt.Sprint(m.FP), fmt.Sprint(m.FN), fmt.Sprint(m.Support))
	}
	title := fmt.Sprintf("Accuracy: %.2f%% (%d/%d)", 100*r.Accuracy, r.Correct, r.Total)
	if r.Name != "" {
		title = r.Name + " " + title
	}
	return titleStyle.Render(title) + "\n" + t.String()
}
