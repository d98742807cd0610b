package command

// shell.go is the long-lived interactive session. It holds a current view,
// routes every navigation through the guard, and reacts to a 401 observed
// on any request by dropping straight back to the login view.

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bookhub/internal/assistant"
	"bookhub/internal/books"
	"bookhub/internal/session"
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive session",
	Long:  `Open an interactive bookstore session: login, browse and edit books, view the dashboard, and ask the assistant.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return runShell(cmd.Context(), a)
	},
}

type shell struct {
	app     *app
	scanner *bufio.Scanner
	view    string
	expired bool
	loaded  bool
}

func runShell(ctx context.Context, a *app) error {
	s := &shell{
		app:     a,
		scanner: bufio.NewScanner(os.Stdin),
	}

	// The forced-logout handler is registered for the lifetime of the
	// shell and removed on teardown so it cannot fire into a dead loop.
	a.ctrl.SetForcedLogoutHandler(func() { s.expired = true })
	defer a.ctrl.SetForcedLogoutHandler(nil)

	s.navigate("/")
	fmt.Println("Welcome to bookhub. Type 'help' for commands, 'exit' to quit.")

	for {
		// A 401 anywhere forces an immediate redirect to login.
		if s.expired {
			s.expired = false
			s.loaded = false
			fmt.Println("Session expired, please login again.")
			s.view = session.PathLogin
		}
		s.navigate(s.view)

		fmt.Printf("bookhub %s> ", strings.TrimPrefix(s.view, "/"))
		if !s.scanner.Scan() {
			return s.scanner.Err()
		}
		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, rest := fields[0], fields[1:]

		if cmd == "exit" || cmd == "quit" {
			return nil
		}
		if done := s.dispatch(ctx, cmd, rest); done {
			return nil
		}
	}
}

// navigate applies the route guard to the requested path and records the
// resulting view.
func (s *shell) navigate(path string) {
	decision := session.Decide(s.app.ctrl.IsAuthenticated(), path)
	s.view = decision.Path
}

func (s *shell) dispatch(ctx context.Context, cmd string, args []string) bool {
	if s.view == session.PathLogin {
		return s.loginView(ctx, cmd, args)
	}

	switch cmd {
	case "help":
		s.printHelp()
	case "books":
		s.navigate(session.PathBooks)
	case "dashboard":
		s.navigate(session.PathDashboard)
		if s.view == session.PathDashboard {
			s.app.books.Refresh(ctx)
			fmt.Print(renderChart(s.app.books.Books()))
			s.navigate(session.PathBooks)
		}
	case "list":
		s.ensureLoaded(ctx)
		s.app.books.Refresh(ctx)
		s.printBooks()
	case "add":
		s.addFlow(ctx)
	case "edit":
		s.editFlow(ctx, args)
	case "delete":
		s.mutateByID(ctx, args, "delete", s.app.books.Delete)
	case "like":
		s.mutateByID(ctx, args, "like", s.app.books.Like)
	case "ask":
		s.askFlow(ctx, args)
	case "logout":
		s.app.ctrl.Logout()
		s.loaded = false
		fmt.Println("✓ Logged out.")
		s.navigate("/")
	default:
		fmt.Printf("Unknown command %q. Type 'help' for commands.\n", cmd)
	}
	return false
}

func (s *shell) loginView(ctx context.Context, cmd string, args []string) bool {
	switch cmd {
	case "help":
		fmt.Println("Commands: login, exit")
	case "login":
		username := ""
		if len(args) > 0 {
			username = args[0]
		} else {
			username = s.prompt("Username: ")
		}
		password, err := readPassword("Password: ")
		if err != nil {
			fmt.Println("Failed to read password:", err)
			return false
		}
		remember := strings.EqualFold(s.prompt("Remember me? [y/N] "), "y")

		token, err := s.app.client.Login(ctx, username, password)
		if err != nil {
			fmt.Println("Login failed:", err)
			return false
		}
		if err := s.app.ctrl.LoginSucceeded(token, remember); err != nil {
			fmt.Println("Failed to store token:", err)
			return false
		}
		fmt.Println("✓ Logged in.")
		s.navigate(session.PathBooks)
		s.ensureLoaded(ctx)
	default:
		fmt.Println("Please login first: 'login [username]'")
	}
	return false
}

// ensureLoaded runs the two initial reads once per authenticated session.
func (s *shell) ensureLoaded(ctx context.Context) {
	if s.loaded {
		return
	}
	s.app.books.Load(ctx)
	s.loaded = true
}

func (s *shell) printBooks() {
	list := s.app.books.Books()
	if len(list) == 0 {
		fmt.Println("No books found.")
		return
	}
	fmt.Printf("My Books List (%d):\n", len(list))
	for _, b := range list {
		printBookSummary(b)
	}
}

func (s *shell) addFlow(ctx context.Context) {
	s.ensureLoaded(ctx)

	var req books.CreateBookRequest
	req.Title = s.prompt("Title: ")
	req.Author = s.prompt("Author: ")

	price, err := strconv.ParseFloat(s.prompt("Price: "), 64)
	if err != nil {
		fmt.Println("Invalid price.")
		return
	}
	stock, err := strconv.Atoi(s.prompt("Stock: "))
	if err != nil {
		fmt.Println("Invalid stock.")
		return
	}
	req.Price, req.Stock = price, stock

	req.CategoryID = s.promptCategory()
	if req.CategoryID == 0 {
		fmt.Println("Cancelled.")
		return
	}
	req.CoverURL = s.prompt("Cover path (optional): ")
	req.Description = s.prompt("Description (optional): ")
	req.ISBN = s.prompt("ISBN (optional): ")

	if err := s.app.books.Add(ctx, req); err != nil {
		fmt.Println("Failed to add book:", err)
		return
	}
	fmt.Println("✓ Book added.")
	s.printBooks()
}

// editFlow drives the edit draft: open, prompt each field with the current
// value as default, then save or cancel. The draft is cleared either way.
func (s *shell) editFlow(ctx context.Context, args []string) {
	s.ensureLoaded(ctx)

	id, ok := s.parseID(args, "edit")
	if !ok {
		return
	}
	draft, ok := s.app.books.OpenEdit(id)
	if !ok {
		fmt.Printf("Book %d not found.\n", id)
		return
	}

	fmt.Println("Editing. Press enter to keep the current value, type 'cancel' to abort.")
	fields := []struct {
		label string
		value *string
	}{
		{"Title", &draft.Title},
		{"Author", &draft.Author},
		{"Price", &draft.Price},
		{"Stock", &draft.Stock},
	}
	for _, f := range fields {
		answer := s.prompt(fmt.Sprintf("%s [%s]: ", f.label, *f.value))
		if strings.EqualFold(answer, "cancel") {
			s.app.books.CancelEdit()
			fmt.Println("Cancelled.")
			return
		}
		if answer != "" {
			*f.value = answer
		}
	}
	if category := s.promptCategory(); category != 0 {
		draft.CategoryID = category
	}

	if err := s.app.books.SaveEdit(ctx); err != nil {
		fmt.Println("Failed to save book:", err)
		return
	}
	fmt.Println("✓ Book saved.")
	s.printBooks()
}

func (s *shell) mutateByID(ctx context.Context, args []string, verb string, fn func(context.Context, int64) error) {
	s.ensureLoaded(ctx)

	id, ok := s.parseID(args, verb)
	if !ok {
		return
	}
	if err := fn(ctx, id); err != nil {
		fmt.Printf("Failed to %s book: %v\n", verb, err)
		return
	}
	fmt.Printf("✓ Done.\n")
	s.printBooks()
}

func (s *shell) askFlow(ctx context.Context, args []string) {
	s.ensureLoaded(ctx)

	gemini := assistant.NewClient(s.app.cfg.GeminiAPIKey)
	if !gemini.HasKey() {
		fmt.Println("Assistant is not configured, set GEMINI_API_KEY to enable it.")
		return
	}

	id, ok := s.parseID(args, "ask")
	if !ok {
		return
	}
	book, found := s.app.books.Find(id)
	if !found {
		fmt.Printf("Book %d not found.\n", id)
		return
	}

	question := strings.Join(args[1:], " ")
	if question == "" {
		question = s.prompt("Question (enter for a summary): ")
	}

	fmt.Println("Thinking...")
	answer, err := gemini.Ask(ctx, book, question)
	if err != nil {
		var assistErr *assistant.Error
		if errors.As(err, &assistErr) {
			fmt.Println(assistErr.Error())
			return
		}
		if errors.Is(err, assistant.ErrMissingAPIKey) {
			fmt.Println("Assistant is not configured, set GEMINI_API_KEY to enable it.")
			return
		}
		fmt.Println("Assistant request failed:", err)
		return
	}
	fmt.Println(answer)
}

func (s *shell) promptCategory() int64 {
	options := books.CategoryOptions(s.app.books.Categories())
	if len(options) == 0 {
		fmt.Println("No categories available.")
		return 0
	}
	for _, o := range options {
		fmt.Printf("  %d) %s\n", o.Value, o.Label)
	}
	id, err := strconv.ParseInt(s.prompt("Category ID: "), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

func (s *shell) parseID(args []string, verb string) (int64, bool) {
	if len(args) == 0 {
		fmt.Printf("Usage: %s <book-id>\n", verb)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Println("Invalid book ID.")
		return 0, false
	}
	return id, true
}

func (s *shell) prompt(label string) string {
	fmt.Print(label)
	if !s.scanner.Scan() {
		return ""
	}
	return strings.TrimSpace(s.scanner.Text())
}

func (s *shell) printHelp() {
	fmt.Println(`Commands:
  list              show the book list
  add               add a book
  edit <id>         edit a book
  delete <id>       delete a book
  like <id>         like a book
  ask <id> [q...]   ask the assistant about a book
  dashboard         show the category chart
  books             back to the book list
  logout            logout
  exit              quit`)
}
