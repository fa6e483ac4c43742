package cmd

import (
	"bufio"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
)

// maxAnswerBytes bounds a single piped answer line.
const maxAnswerBytes = 4 * 1024 * 1024

type answerReader interface {
	ReadAnswer() (string, error)
}

// newAnswerReader prompts interactively on a terminal and reads one answer
// per line otherwise, so answers can be piped in.
func newAnswerReader(in io.Reader, interactive bool) answerReader {
	if interactive {
		return promptReader{}
	}
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxAnswerBytes)
	return &lineReader{scanner: scanner}
}

type promptReader struct{}

func (promptReader) ReadAnswer() (string, error) {
	prompt := promptui.Prompt{Label: "Your answer"}
	return prompt.Run()
}

type lineReader struct {
	scanner *bufio.Scanner
}

// ReadAnswer returns promptui.ErrEOF once the input is exhausted.
func (r *lineReader) ReadAnswer() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", promptui.ErrEOF
	}
	return strings.TrimRight(r.scanner.Text(), "\r"), nil
}
