package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"mufawter/internal/analytics"
	"mufawter/internal/chat"
	"mufawter/internal/logger"
	"mufawter/internal/render"
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask questions about your invoices",
	Long: `Ask the invoice assistant about your spending, in Arabic or English.

With a question as argument the answer is printed and the command exits.
Without one an interactive session starts; type "exit" to leave.

With --transcript the conversation is loaded from and saved to a JSON file,
so a session can be continued later.`,
	Example: `  mufawter chat "كم صرفت على المقاهي هذا الشهر؟"
  mufawter chat --transcript chat.json`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	chatCmd.Flags().String("transcript", "", "Load and save the conversation in this JSON file")
	chatCmd.Flags().Bool("json", false, "Print the answer message as JSON (single question only)")
	chatCmd.Flags().IntP("timeout", "t", defaultTimeoutSecs, "Timeout in seconds for a single question")
}

func runChat(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("chat")

	transcript, _ := cmd.Flags().GetString("transcript")
	asJSON, _ := cmd.Flags().GetBool("json")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	client, err := newAPIClient(cfg, log)
	if err != nil {
		return err
	}

	session := chat.NewSession(client, cfg.Locale)
	if transcript != "" {
		if err := session.Load(transcript); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load transcript: %w", err)
		}
	}

	labels := cfg.Labels()
	out := cmd.OutOrStdout()

	if question := strings.TrimSpace(strings.Join(args, " ")); question != "" {
		ctx, cancel := createCommandContext(timeoutSecs, log)
		defer cancel()

		msg, err := session.Send(ctx, question)
		if saveErr := saveTranscript(session, transcript, log); saveErr != nil {
			return saveErr
		}
		if err != nil {
			return handleCommandError(err, "asking the assistant", log)
		}
		if asJSON {
			return outputJSON(msg, "", log)
		}
		fmt.Fprintln(out, render.Reply(msg.Content, msg.Invoices, labels))
		return nil
	}

	err = chatLoop(cmd.InOrStdin(), out, session, labels, timeoutSecs, log)
	if saveErr := saveTranscript(session, transcript, log); saveErr != nil {
		return saveErr
	}
	return err
}

// chatLoop reads questions line by line until EOF or an exit word.
func chatLoop(in io.Reader, out io.Writer, session *chat.Session, labels analytics.Labels, timeoutSecs int, log zerolog.Logger) error {
	for _, m := range session.Messages() {
		if m.Role == chat.RoleUser {
			fmt.Fprintf(out, "› %s\n", m.Content)
			continue
		}
		fmt.Fprintln(out, render.Reply(m.Content, m.Invoices, labels))
	}

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "› ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		question := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(question) {
		case "":
			continue
		case "exit", "quit", "خروج":
			return nil
		}

		msg, err := askOnce(session, question, timeoutSecs, log)
		if err != nil && !msg.Failed {
			fmt.Fprintln(out, render.Warning(err.Error()))
			continue
		}
		fmt.Fprintln(out, render.Reply(msg.Content, msg.Invoices, labels))
	}
}

func askOnce(session *chat.Session, question string, timeoutSecs int, log zerolog.Logger) (chat.Message, error) {
	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	msg, err := session.Send(ctx, question)
	if err != nil && errors.Is(err, context.Canceled) {
		log.Info().Msg("Question canceled")
	}
	return msg, err
}

func saveTranscript(session *chat.Session, path string, log zerolog.Logger) error {
	if path == "" {
		return nil
	}
	if err := session.Save(path); err != nil {
		log.Error().Err(err).Str("transcript", path).Msg("Failed to save transcript")
		return fmt.Errorf("failed to save transcript: %w", err)
	}
	log.Debug().Str("transcript", path).Msg("Transcript saved")
	return nil
}
