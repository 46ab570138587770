// Package main provides surveyctl, offline tooling for stored survey questions.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"surveyeditor/internal/survey"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surveyctl",
		Short: "Inspect and migrate survey question documents",
		Long: `Inspect and migrate the questions JSON stored with a survey.

FILE may be "-" to read standard input. Both the current record format and
the legacy list of prompt strings are accepted.

Examples:
  surveyctl validate questions.json
  surveyctl migrate legacy.json -o questions.json
  surveyctl triggers questions.json 3
  surveyctl preview questions.json --answers answers.yaml
`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(validateCmd(), migrateCmd(), triggersCmd(), previewCmd())
	return cmd
}

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check that a questions document parses with every branch rule intact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, repaired, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}

			rules := 0
			for _, q := range doc.Questions() {
				if q.RuleState() == survey.RuleComplete {
					rules++
				}
			}
			if repaired > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "invalid: %d questions, %d branch rules, %d broken branch rules\n", doc.Len(), rules, repaired)
				return fmt.Errorf("%s: %d branch rules reference a missing or unsuitable trigger", args[0], repaired)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok: %d questions, %d branch rules\n", doc.Len(), rules)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "migrate FILE",
		Short: "Rewrite a document in the current record format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, repaired, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			if repaired > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "dropped %d broken branch rules\n", repaired)
			}
			data, err := survey.Serialize(doc)
			if err != nil {
				return err
			}

			var pretty bytes.Buffer
			if err := json.Indent(&pretty, data, "", "  "); err != nil {
				return err
			}
			pretty.WriteByte('\n')

			if output == "" {
				_, err = cmd.OutOrStdout().Write(pretty.Bytes())
				return err
			}
			return os.WriteFile(output, pretty.Bytes(), 0o644)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to this file instead of stdout")
	return cmd
}

func triggersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "triggers FILE INDEX",
		Short: "List the questions a branch rule at INDEX may depend on",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[1])
			}

			triggers, err := doc.EligibleTriggers(index)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(triggers) == 0 {
				fmt.Fprintln(out, "no eligible triggers")
				return nil
			}
			for _, t := range triggers {
				fmt.Fprintf(out, "Q%d: %s [%s]\n", t.Index+1, t.Prompt, survey.JoinOptions(t.Options))
			}
			return nil
		},
	}
}

func previewCmd() *cobra.Command {
	var answersFile string

	cmd := &cobra.Command{
		Use:   "preview FILE",
		Short: "Show which questions a set of answers would display",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := readDocument(cmd, args[0])
			if err != nil {
				return err
			}

			answers := survey.Answers{}
			if answersFile != "" {
				if answers, err = readAnswers(answersFile); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			questions := doc.Questions()
			for i, shown := range doc.Visibility(answers) {
				state := "shown "
				if !shown {
					state = "hidden"
				}
				fmt.Fprintf(out, "Q%d %s %s\n", i+1, state, questions[i].Prompt)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&answersFile, "answers", "", "YAML mapping of question index to answer")
	return cmd
}

// readDocument parses FILE and reports how many broken branch rules were dropped
func readDocument(cmd *cobra.Command, path string) (*survey.Document, int, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}

	doc, repaired, err := survey.ParseWithRepairs(data)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}
	return doc, repaired, nil
}

// readAnswers loads answers such as:
//
//	0: "No"
//	2: Fish
func readAnswers(path string) (survey.Answers, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read answers: %w", err)
	}
	answers := survey.Answers{}
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("parse answers %s: %w", path, err)
	}
	return answers, nil
}
