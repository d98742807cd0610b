package command

// ask.go relays a free-text question about one book to the Gemini
// assistant.

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bookhub/internal/assistant"
	"bookhub/internal/session"
)

var askCmd = &cobra.Command{
	Use:   "ask [book-id] [question...]",
	Short: "Ask the assistant about a book",
	Long: `Ask the Gemini assistant a free-text question about one book record.
Requires GEMINI_API_KEY in the environment or a .env file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAuth(session.PathBooks); err != nil {
			return err
		}

		gemini := assistant.NewClient(a.cfg.GeminiAPIKey)
		if !gemini.HasKey() {
			return fmt.Errorf("assistant is not configured, set GEMINI_API_KEY to enable it")
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid book ID: %w", err)
		}
		question := strings.Join(args[1:], " ")

		a.books.Load(cmd.Context())
		book, ok := a.books.Find(id)
		if !ok {
			return fmt.Errorf("book %d not found", id)
		}

		answer, err := gemini.Ask(cmd.Context(), book, question)
		if err != nil {
			var assistErr *assistant.Error
			if errors.As(err, &assistErr) {
				// Surface assistant failures as the displayed answer,
				// mirroring how the modal shows them in place.
				fmt.Println(assistErr.Error())
				return nil
			}
			return err
		}

		fmt.Println(answer)
		return nil
	},
}
