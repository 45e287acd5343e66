package catalog

import (
	"os"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"
)

// SurveyPrompter asks on the terminal.
type SurveyPrompter struct{}

func (SurveyPrompter) Select(message string, options []string) (int, error) {
	var index int
	prompt := &survey.Select{
		Message: message,
		Options: options,
	}
	if err := survey.AskOne(prompt, &index); err != nil {
		return 0, err
	}
	return index, nil
}

// InteractivePrompter returns a SurveyPrompter when stdin is a terminal and
// nil otherwise, so unattended starts fall back to the default selection.
func InteractivePrompter() Prompter {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil
	}
	return SurveyPrompter{}
}
