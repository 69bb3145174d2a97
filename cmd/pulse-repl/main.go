// Command pulse-repl is an interactive playground for the Pulse
// dialect: each submitted snippet is parsed and linted, and the
// resulting statements and diagnostics are printed.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/pulse-lang/pulse/internal/asi"
	"github.com/pulse-lang/pulse/internal/frontend"
	"github.com/pulse-lang/pulse/internal/frontmatter"
)

const (
	historyFile = ".pulse_history"
	promptMain  = "pulse> "
	promptCont  = "...... "
)

var banner = fmt.Sprintf("Pulse %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", frontmatter.EngineVersion)

func red(s string) string    { return "\x1b[31m" + s + "\x1b[0m" }
func green(s string) string  { return "\x1b[32m" + s + "\x1b[0m" }
func yellow(s string) string { return "\x1b[33m" + s + "\x1b[0m" }

func main() {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyPath := historyPath()
	if f, err := os.Open(historyPath); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	fmt.Println(banner)

	var buffer []string
	for {
		prompt := promptMain
		if len(buffer) > 0 {
			prompt = promptCont
		}

		input, err := line.Prompt(prompt)
		if err == liner.ErrPromptAborted {
			buffer = nil
			continue
		}
		if err != nil {
			fmt.Println()
			return
		}

		if len(buffer) == 0 && strings.TrimSpace(input) == ":quit" {
			return
		}

		buffer = append(buffer, input)
		snippet := strings.Join(buffer, "\n")

		// Keep reading while braces or parens are unbalanced.
		if openDelimiters(snippet) > 0 {
			continue
		}
		buffer = nil

		if strings.TrimSpace(snippet) == "" {
			continue
		}
		line.AppendHistory(snippet)
		evaluate(snippet)
	}
}

// evaluate parses and lints one snippet, printing the outcome.
func evaluate(snippet string) {
	fe := frontend.New()
	program, err := fe.ParseModern(snippet)
	if err != nil {
		fmt.Println(red(err.Error()))
		return
	}

	for _, stmt := range program.Statements {
		marker := ";"
		if !stmt.Terminated() {
			marker = "(terminator inferred)"
		}
		fmt.Printf("%s %s\n", green(stmt.String()), marker)
	}

	for _, amb := range fe.ASIAmbiguities() {
		fmt.Println(yellow(fmt.Sprintf("line %d: %s", amb.Location.Line, amb.Message)))
		for _, fix := range asi.GenerateQuickFixes(amb) {
			fmt.Printf("  fix: %s\n", fix.Description)
		}
	}
}

// openDelimiters counts unclosed braces and parens outside strings and
// comments, to drive the continuation prompt.
func openDelimiters(src string) int {
	depth := 0
	var quote byte
	inLineComment := false

	for i := 0; i < len(src); i++ {
		ch := src[i]
		if inLineComment {
			if ch == '\n' {
				inLineComment = false
			}
			continue
		}
		if quote != 0 {
			if ch == '\\' {
				i++
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'', '`':
			quote = ch
		case '/':
			if i+1 < len(src) && src[i+1] == '/' {
				inLineComment = true
			}
		case '{', '(':
			depth++
		case '}', ')':
			depth--
		}
	}
	return depth
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}
