package command

// book.go implements book record management: list, get, add, update,
// delete, like. Every mutation goes through the collection manager so the
// refetch-to-consistency convention always applies.

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"bookhub/internal/books"
	"bookhub/internal/session"
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Book management commands",
	Long:  `Manage book records: list, view, add, update, delete and like.`,
}

var listBooksCmd = &cobra.Command{
	Use:   "list",
	Short: "List all books",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAuth(session.PathBooks); err != nil {
			return err
		}

		a.books.Load(cmd.Context())
		list := a.books.Books()
		if len(list) == 0 {
			fmt.Println("No books found.")
			return nil
		}

		fmt.Printf("Found %d books:\n\n", len(list))
		for _, b := range list {
			printBookSummary(b)
		}
		return nil
	},
}

var getBookCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Get book by ID",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAuth(session.PathBooks); err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid book ID: %w", err)
		}

		a.books.Load(cmd.Context())
		book, ok := a.books.Find(id)
		if !ok {
			return fmt.Errorf("book %d not found", id)
		}

		printBookDetail(a, book)
		return nil
	},
}

var addBookCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a new book",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAuth(session.PathBooks); err != nil {
			return err
		}

		var req books.CreateBookRequest
		req.Title, _ = cmd.Flags().GetString("title")
		req.Author, _ = cmd.Flags().GetString("author")
		req.Price, _ = cmd.Flags().GetFloat64("price")
		req.Stock, _ = cmd.Flags().GetInt("stock")
		req.CategoryID, _ = cmd.Flags().GetInt64("category")
		req.CoverURL, _ = cmd.Flags().GetString("cover")
		req.Description, _ = cmd.Flags().GetString("description")
		req.ISBN, _ = cmd.Flags().GetString("isbn")

		if err := a.books.Add(cmd.Context(), req); err != nil {
			return fmt.Errorf("failed to add book: %w", err)
		}

		fmt.Println("✓ Book added successfully!")
		fmt.Printf("The list now holds %d books.\n", len(a.books.Books()))
		return nil
	},
}

var updateBookCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a book's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAuth(session.PathBooks); err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid book ID: %w", err)
		}

		a.books.Load(cmd.Context())
		base, ok := a.books.Find(id)
		if !ok {
			return fmt.Errorf("book %d not found", id)
		}

		var draft books.EditDraft
		draft.Title, _ = cmd.Flags().GetString("title")
		draft.Author, _ = cmd.Flags().GetString("author")
		draft.Price, _ = cmd.Flags().GetString("price")
		draft.Stock, _ = cmd.Flags().GetString("stock")
		draft.CategoryID, _ = cmd.Flags().GetInt64("category")
		draft.CoverURL, _ = cmd.Flags().GetString("cover")
		draft.Description, _ = cmd.Flags().GetString("description")
		draft.ISBN, _ = cmd.Flags().GetString("isbn")

		merged, err := draft.Apply(base)
		if err != nil {
			return err
		}
		if err := a.books.Update(cmd.Context(), merged); err != nil {
			return fmt.Errorf("failed to update book: %w", err)
		}

		fmt.Println("✓ Book updated successfully!")
		if updated, ok := a.books.Find(id); ok {
			printBookSummary(updated)
		}
		return nil
	},
}

var deleteBookCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAuth(session.PathBooks); err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid book ID: %w", err)
		}

		a.books.Load(cmd.Context())
		if err := a.books.Delete(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to delete book: %w", err)
		}

		fmt.Println("✓ Book deleted successfully!")
		return nil
	},
}

var likeBookCmd = &cobra.Command{
	Use:   "like [id]",
	Short: "Like a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()
		if err := a.requireAuth(session.PathBooks); err != nil {
			return err
		}

		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid book ID: %w", err)
		}

		a.books.Load(cmd.Context())
		if err := a.books.Like(cmd.Context(), id); err != nil {
			return fmt.Errorf("failed to like book: %w", err)
		}

		if book, ok := a.books.Find(id); ok {
			fmt.Printf("✓ Liked %q (%d likes)\n", book.Title, book.LikeCount)
		} else {
			fmt.Println("✓ Liked.")
		}
		return nil
	},
}

func printBookSummary(b books.Book) {
	category := "-"
	if b.Category != nil {
		category = b.Category.Name
	}
	fmt.Printf("ID: %d | %s — %s | %.2f | stock %d | %s | ♥ %d\n",
		b.ID, b.Title, b.Author, b.Price, b.Stock, category, b.LikeCount)
}

func printBookDetail(a *app, b books.Book) {
	fmt.Printf("ID: %d\n", b.ID)
	fmt.Printf("Title: %s\n", b.Title)
	fmt.Printf("Author: %s\n", b.Author)
	fmt.Printf("Price: %.2f\n", b.Price)
	fmt.Printf("Stock: %d\n", b.Stock)
	if b.Category != nil {
		fmt.Printf("Category: %s\n", b.Category.Name)
	}
	fmt.Printf("Likes: %d\n", b.LikeCount)
	if b.ISBN != "" {
		fmt.Printf("ISBN: %s\n", b.ISBN)
	}
	if b.Description != "" {
		fmt.Printf("Description: %s\n", b.Description)
	}
	if b.CoverURL != "" {
		fmt.Printf("Cover: %s/%s\n", a.cfg.AssetURL, strings.TrimPrefix(b.CoverURL, "/"))
	}
	if b.CreatedAt != nil {
		fmt.Printf("Created At: %s\n", b.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	if b.UpdatedAt != nil {
		fmt.Printf("Updated At: %s\n", b.UpdatedAt.Format("2006-01-02 15:04:05"))
	}
}

func init() {
	bookCmd.AddCommand(listBooksCmd)
	bookCmd.AddCommand(getBookCmd)
	bookCmd.AddCommand(addBookCmd)
	bookCmd.AddCommand(updateBookCmd)
	bookCmd.AddCommand(deleteBookCmd)
	bookCmd.AddCommand(likeBookCmd)

	addBookCmd.Flags().String("title", "", "Book title")
	addBookCmd.Flags().String("author", "", "Book author")
	addBookCmd.Flags().Float64("price", 0, "Price")
	addBookCmd.Flags().Int("stock", 0, "Stock count")
	addBookCmd.Flags().Int64("category", 0, "Category ID")
	addBookCmd.Flags().String("cover", "", "Cover image path")
	addBookCmd.Flags().String("description", "", "Description")
	addBookCmd.Flags().String("isbn", "", "ISBN")
	addBookCmd.MarkFlagRequired("title")
	addBookCmd.MarkFlagRequired("author")
	addBookCmd.MarkFlagRequired("price")
	addBookCmd.MarkFlagRequired("stock")
	addBookCmd.MarkFlagRequired("category")

	updateBookCmd.Flags().String("title", "", "Book title")
	updateBookCmd.Flags().String("author", "", "Book author")
	updateBookCmd.Flags().String("price", "", "Price")
	updateBookCmd.Flags().String("stock", "", "Stock count")
	updateBookCmd.Flags().Int64("category", 0, "Category ID")
	updateBookCmd.Flags().String("cover", "", "Cover image path")
	updateBookCmd.Flags().String("description", "", "Description")
	updateBookCmd.Flags().String("isbn", "", "ISBN")
}
