package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sweetshop/sweet-api/pkg/client"
)

const defaultAPIURL = "http://localhost:3000/api"

var (
	apiURL      string
	sessionPath string
)

// newClient builds an SDK client whose session lives in the session file.
func newClient() (*client.Client, error) {
	path := sessionPath
	if path == "" {
		p, err := client.DefaultSessionPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return client.New(apiURL, client.WithStore(client.NewFileStore(path)))
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		f := cmd.Flags()
		req := client.RegisterRequest{}
		req.FirstName, _ = f.GetString("first-name")
		req.LastName, _ = f.GetString("last-name")
		req.Email, _ = f.GetString("email")
		req.Password, _ = f.GetString("password")

		s, err := c.Register(cmd.Context(), req)
		if s == nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "registered %s (%s)\n", s.User.Email, s.User.Role)
		return err
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		s, err := c.Login(cmd.Context(), email, password)
		if s == nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s (%s), %d sweets available\n", s.User.Email, s.User.Role, len(c.Sweets()))
		return err
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		return c.Logout()
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the identity of the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		id, err := c.Me(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", id.ID, id.Email, id.Role)
		return nil
	},
}

var sweetsCmd = &cobra.Command{
	Use:   "sweets",
	Short: "Browse and manage the catalog",
}

var sweetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List every sweet",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		sweets, err := c.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		return printSweets(cmd.OutOrStdout(), sweets)
	},
}

var sweetsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search by name, category and price range",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		f := cmd.Flags()
		q := client.SearchQuery{}
		q.Name, _ = f.GetString("name")
		q.Category, _ = f.GetString("category")
		if f.Changed("min-price") {
			v, _ := f.GetFloat64("min-price")
			q.MinPrice = &v
		}
		if f.Changed("max-price") {
			v, _ := f.GetFloat64("max-price")
			q.MaxPrice = &v
		}

		sweets, err := c.Search(cmd.Context(), q)
		if err != nil {
			return err
		}
		return printSweets(cmd.OutOrStdout(), sweets)
	},
}

var sweetsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a sweet (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		f := cmd.Flags()
		req := client.CreateSweetRequest{}
		req.Name, _ = f.GetString("name")
		req.Category, _ = f.GetString("category")
		req.Price, _ = f.GetFloat64("price")
		req.Quantity, _ = f.GetInt("quantity")

		return printMutation(cmd, "created")(c.Create(cmd.Context(), req))
	},
}

var sweetsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change name, category or price of a sweet (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		f := cmd.Flags()
		req := client.UpdateSweetRequest{}
		if f.Changed("name") {
			v, _ := f.GetString("name")
			req.Name = &v
		}
		if f.Changed("category") {
			v, _ := f.GetString("category")
			req.Category = &v
		}
		if f.Changed("price") {
			v, _ := f.GetFloat64("price")
			req.Price = &v
		}

		return printMutation(cmd, "updated")(c.Update(cmd.Context(), args[0], req))
	},
}

var sweetsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a sweet (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		if err := c.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
		return nil
	},
}

var sweetsPurchaseCmd = &cobra.Command{
	Use:   "purchase <id>",
	Short: "Buy units of a sweet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		qty, _ := cmd.Flags().GetInt("quantity")
		return printMutation(cmd, "purchased")(c.Purchase(cmd.Context(), args[0], qty))
	},
}

var sweetsRestockCmd = &cobra.Command{
	Use:   "restock <id>",
	Short: "Add units of a sweet (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		qty, _ := cmd.Flags().GetInt("quantity")
		return printMutation(cmd, "restocked")(c.Restock(cmd.Context(), args[0], qty))
	},
}

func printMutation(cmd *cobra.Command, verb string) func(*client.Sweet, error) error {
	return func(s *client.Sweet, err error) error {
		if s == nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s, %d in stock\n", verb, s.ID, s.Name, s.Quantity)
		return err
	}
}

func printSweets(w io.Writer, sweets []client.Sweet) error {
	if len(sweets) == 0 {
		_, err := fmt.Fprintln(w, "no sweets found")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tQUANTITY")
	for _, s := range sweets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", s.ID, s.Name, s.Category, strconv.FormatFloat(s.Price, 'f', 2, 64), s.Quantity)
	}
	return tw.Flush()
}

func init() {
	defaultURL := os.Getenv("SWEETSHOP_API_URL")
	if defaultURL == "" {
		defaultURL = defaultAPIURL
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "base URL of the API (env SWEETSHOP_API_URL)")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", "", "session file (default in the user config dir)")

	registerCmd.Flags().String("first-name", "", "first name")
	registerCmd.Flags().String("last-name", "", "last name")
	registerCmd.Flags().String("email", "", "email address")
	registerCmd.Flags().String("password", "", "password, at least 6 characters")

	loginCmd.Flags().String("email", "", "email address")
	loginCmd.Flags().String("password", "", "password")

	sweetsSearchCmd.Flags().String("name", "", "name substring")
	sweetsSearchCmd.Flags().String("category", "", "cake, candy, cookie, pie or other")
	sweetsSearchCmd.Flags().Float64("min-price", 0, "minimum price, inclusive")
	sweetsSearchCmd.Flags().Float64("max-price", 0, "maximum price, inclusive")

	sweetsAddCmd.Flags().String("name", "", "sweet name")
	sweetsAddCmd.Flags().String("category", "", "cake, candy, cookie, pie or other")
	sweetsAddCmd.Flags().Float64("price", 0, "unit price")
	sweetsAddCmd.Flags().Int("quantity", 0, "initial stock")

	sweetsUpdateCmd.Flags().String("name", "", "new name")
	sweetsUpdateCmd.Flags().String("category", "", "new category")
	sweetsUpdateCmd.Flags().Float64("price", 0, "new price")

	sweetsPurchaseCmd.Flags().Int("quantity", 1, "units to buy")
	sweetsRestockCmd.Flags().Int("quantity", 1, "units to add")

	sweetsCmd.AddCommand(sweetsListCmd, sweetsSearchCmd, sweetsAddCmd, sweetsUpdateCmd, sweetsDeleteCmd, sweetsPurchaseCmd, sweetsRestockCmd)
	rootCmd.AddCommand(registerCmd, loginCmd, logoutCmd, whoamiCmd, sweetsCmd)
}
