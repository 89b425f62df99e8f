// Package interactive provides terminal menu prompts.
package interactive

import (
	"errors"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
)

const exitChoice = "Exit"

// MenuOption represents a menu item with its associated action
type MenuOption struct {
	Name        string
	Description string
	Action      func() error
}

var (
	// ErrExit is returned when the user chooses to exit
	ErrExit = errors.New("exit")
	// ErrInvalidSelection is returned when an invalid menu option is selected
	ErrInvalidSelection = errors.New("invalid selection")
)

// choices renders the menu labels in order, followed by Exit.
func choices(options []MenuOption) ([]string, map[string]MenuOption) {
	labels := make([]string, 0, len(options)+1)
	byLabel := make(map[string]MenuOption, len(options))

	for _, opt := range options {
		label := opt.Name
		if opt.Description != "" {
			label = fmt.Sprintf("%s - %s", opt.Name, opt.Description)
		}

		labels = append(labels, label)
		byLabel[label] = opt
	}

	return append(labels, exitChoice), byLabel
}

// ShowMenu displays options and runs the selected action.
func ShowMenu(message string, options []MenuOption) error {
	labels, byLabel := choices(options)

	var selected string

	prompt := &survey.Select{
		Message:  message,
		Options:  labels,
		PageSize: len(labels),
	}

	if err := survey.AskOne(prompt, &selected); err != nil {
		return ErrExit
	}

	return dispatch(selected, byLabel)
}

func dispatch(selected string, byLabel map[string]MenuOption) error {
	if selected == exitChoice {
		return ErrExit
	}

	if option, ok := byLabel[selected]; ok {
		return option.Action()
	}

	return ErrInvalidSelection
}

// SelectFromList asks the user to pick one of items.
func SelectFromList(message string, items []string) (string, error) {
	var selected string

	if err := survey.AskOne(&survey.Select{Message: message, Options: items}, &selected); err != nil {
		return "", fmt.Errorf("selection canceled: %w", err)
	}

	return selected, nil
}

// Input asks for free text, returning def when the answer is empty.
func Input(message, def string) (string, error) {
	var answer string

	if err := survey.AskOne(&survey.Input{Message: message, Default: def}, &answer); err != nil {
		return "", fmt.Errorf("input canceled: %w", err)
	}

	return answer, nil
}

// PauseForEnter waits for the user to press Enter
func PauseForEnter() {
	fmt.Println("\nPress Enter to continue...")
	_, _ = fmt.Scanln()
}

// Confirm asks for user confirmation
func Confirm(message string) bool {
	confirmed := false
	prompt := &survey.Confirm{
		Message: message,
		Default: false,
	}
	_ = survey.AskOne(prompt, &confirmed)

	return confirmed
}
