package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/askdocs/internal/core/domain"
)

// maxStdinQuestion caps a question read from a pipe.
const maxStdinQuestion = 64 << 10

var (
	askSources bool
	askJSON    bool
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer one question and exit",
	Long: `Build the index, answer a single question and print the answer.

The question is taken from the arguments, or read from stdin when it is
piped:

  askdocs ask how many vacation days do I get
  echo "who approves expenses?" | askdocs ask`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVarP(&askSources, "sources", "s", false, "list the passages the answer was drawn from")
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer as JSON")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question, err := readQuestion(cmd, args)
	if err != nil {
		return err
	}

	settings, err := loadSettings()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	c, _, err := buildIndex(ctx, settings)
	if err != nil {
		return err
	}
	defer c.Close()

	answer, err := c.Answer.Ask(ctx, question)
	if err != nil {
		return fmt.Errorf("answering question: %w", err)
	}

	if askJSON {
		return outputAnswerJSON(cmd, answer)
	}
	outputAnswer(cmd, answer, askSources)
	return nil
}

// readQuestion joins the arguments, or reads a piped stdin when there are none.
func readQuestion(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		question := strings.TrimSpace(strings.Join(args, " "))
		if question == "" {
			return "", errors.New("question is empty")
		}
		return question, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return "", errors.New("no question given: pass it as an argument or pipe it on stdin")
	}

	data, err := io.ReadAll(io.LimitReader(in, maxStdinQuestion))
	if err != nil {
		return "", fmt.Errorf("reading question from stdin: %w", err)
	}
	question := strings.TrimSpace(string(data))
	if question == "" {
		return "", errors.New("question is empty")
	}
	return question, nil
}

type answerJSON struct {
	Question string       `json:"question"`
	Answer   string       `json:"answer"`
	Fallback bool         `json:"fallback"`
	Sources  []sourceJSON `json:"sources"`
}

type sourceJSON struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

func outputAnswerJSON(cmd *cobra.Command, answer domain.Answer) error {
	out := answerJSON{
		Question: answer.Question,
		Answer:   answer.Text,
		Fallback: answer.Fallback,
		Sources:  make([]sourceJSON, 0, len(answer.Sources)),
	}
	for _, src := range answer.Sources {
		out.Sources = append(out.Sources, sourceJSON{Source: src.Chunk.Source, Score: src.Score})
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputAnswer(cmd *cobra.Command, answer domain.Answer, sources bool) {
	cmd.Println(strings.TrimSpace(answer.Text))
	if !sources || len(answer.Sources) == 0 {
		return
	}

	cmd.Println()
	cmd.Println("Sources:")
	for i, src := range answer.Sources {
		cmd.Printf("  [%d] %s (%.2f)\n", i+1, src.Chunk.Source, src.Score)
	}
}
