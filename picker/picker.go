// Package picker asks the user for the folder results are saved to
package picker

import "bufio"
import "errors"
import "fmt"
import "io"
import "os"
import "path/filepath"
import "strings"

import "github.com/mattn/go-isatty"

// Prompt asks for a folder. On a terminal it opens a folder browser (see
// Pick); otherwise it writes a prompt to out and reads one line from in.
// Cancelling (Esc, ctrl+c, an empty answer or end of input) returns ok false
// and a nil error. When def is not empty the browser starts there if it
// exists, and a single "." line answer selects it.
func Prompt(in io.Reader, out io.Writer, def string) (dir string, ok bool, err error) {
	if f, isFile := in.(*os.File); isFile && isatty.IsTerminal(f.Fd()) {
		start := "."
		if st, err := os.Stat(def); def != "" && err == nil && st.IsDir() {
			start = def
		}
		return Pick(f, out, start)
	}
	return readLine(in, out, def)
}

// readLine is the prompt for piped input. A "~/" prefix is expanded to the
// home directory.
func readLine(in io.Reader, out io.Writer, def string) (dir string, ok bool, err error) {
	if def != "" {
		fmt.Fprintf(out, "Save results to folder ('.' for %s, empty to skip): ", def)
	} else {
		fmt.Fprint(out, "Save results to folder (empty to skip): ")
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return "", false, nil
	case line == "." && def != "":
		line = def
	case strings.HasPrefix(line, "~/"):
		home, err := os.UserHomeDir()
		if err != nil {
			return "", false, err
		}
		line = filepath.Join(home, line[2:])
	}
	return filepath.Clean(line), true, nil
}
