package main

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	SupplierCode *string `json:"supplierCode"`
}

type inventory struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description"`
	NotificationEmail string `json:"notificationEmail"`
}

type item struct {
	ID                string    `json:"id"`
	ProductID         string    `json:"productId"`
	InventoryID       string    `json:"inventoryId"`
	CurrentQuantity   int       `json:"currentQuantity"`
	MinimumStockLevel int       `json:"minimumStockLevel"`
	LowStock          bool      `json:"lowStock"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func newAuthCmd(client func() *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "auth", Short: "Register, log in and log out"}

	var email, password string
	register := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var user struct {
				UserID string `json:"userId"`
				Email  string `json:"email"`
			}
			body := map[string]string{"email": email, "password": password}
			if err := client().do(cmd.Context(), http.MethodPost, "/api/auth/register", body, &user); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s (%s)\n", user.Email, user.UserID)
			return nil
		},
	}

	login := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var result struct {
				Token     string `json:"token"`
				ExpiresIn int    `json:"expiresIn"`
			}
			body := map[string]string{"email": email, "password": password}
			if err := client().do(cmd.Context(), http.MethodPost, "/api/auth/login", body, &result); err != nil {
				return err
			}
			if err := saveToken(result.Token); err != nil {
				return fmt.Errorf("save token: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s, token valid for %s\n",
				email, time.Duration(result.ExpiresIn)*time.Second)
			return nil
		},
	}

	for _, c := range []*cobra.Command{register, login} {
		c.Flags().StringVar(&email, "email", "", "account email")
		c.Flags().StringVar(&password, "password", "", "account password")
		c.MarkFlagRequired("email")
		c.MarkFlagRequired("password")
	}

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := removeToken(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}

	cmd.AddCommand(register, login, logout)
	return cmd
}

func newProductsCmd(client func() *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "products", Short: "Manage products"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your products",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var products []product
			if err := client().do(cmd.Context(), http.MethodGet, "/api/products", nil, &products); err != nil {
				return err
			}
			renderProducts(cmd.OutOrStdout(), products)
			return nil
		},
	}

	var name, supplierCode string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a product",
		RunE: func(cmd *cobra.Command, _ []string) error {
			body := map[string]any{"name": name}
			if supplierCode != "" {
				body["supplierCode"] = supplierCode
			}
			var p product
			if err := client().do(cmd.Context(), http.MethodPost, "/api/products", body, &p); err != nil {
				return err
			}
			renderProducts(cmd.OutOrStdout(), []product{p})
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "product name")
	create.Flags().StringVar(&supplierCode, "supplier-code", "", "supplier code")
	create.MarkFlagRequired("name")

	cmd.AddCommand(list, create)
	return cmd
}

func newInventoriesCmd(client func() *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "inventories", Short: "Manage inventories"}

	list := &cobra.Command{
		Use:   "list",
		Short: "List your inventories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var inventories []inventory
			if err := client().do(cmd.Context(), http.MethodGet, "/api/inventories", nil, &inventories); err != nil {
				return err
			}
			renderInventories(cmd.OutOrStdout(), inventories)
			return nil
		},
	}

	var name, description, email string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an inventory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			body := map[string]any{"name": name, "notificationEmail": email}
			if cmd.Flags().Changed("description") {
				body["description"] = description
			}
			var inv inventory
			if err := client().do(cmd.Context(), http.MethodPost, "/api/inventories", body, &inv); err != nil {
				return err
			}
			renderInventories(cmd.OutOrStdout(), []inventory{inv})
			return nil
		},
	}
	create.Flags().StringVar(&name, "name", "", "inventory name")
	create.Flags().StringVar(&description, "description", "", "free-text description")
	create.Flags().StringVar(&email, "email", "", "low-stock notification email")
	create.MarkFlagRequired("name")
	create.MarkFlagRequired("email")

	cmd.AddCommand(list, create)
	return cmd
}

func newItemsCmd(client func() *apiClient) *cobra.Command {
	cmd := &cobra.Command{Use: "items", Short: "Inspect and adjust stock"}

	var inventoryID string
	list := &cobra.Command{
		Use:   "list",
		Short: "List items, optionally for one inventory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := "/api/items"
			if inventoryID != "" {
				path = "/api/inventories/" + inventoryID + "/items"
			}
			var items []item
			if err := client().do(cmd.Context(), http.MethodGet, path, nil, &items); err != nil {
				return err
			}
			renderItems(cmd.OutOrStdout(), items)
			return nil
		},
	}
	list.Flags().StringVar(&inventoryID, "inventory", "", "inventory id")

	lowStock := &cobra.Command{
		Use:   "low-stock",
		Short: "List items at or below their minimum stock level",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var items []item
			if err := client().do(cmd.Context(), http.MethodGet, "/api/items/low-stock", nil, &items); err != nil {
				return err
			}
			renderItems(cmd.OutOrStdout(), items)
			return nil
		},
	}

	var delta int
	adjust := &cobra.Command{
		Use:     "adjust <item-id>",
		Short:   "Add to or remove from an item's quantity",
		Example: "  stockctl items adjust 5b1c... --delta=-3",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var it item
			body := map[string]int{"delta": delta}
			if err := client().do(cmd.Context(), http.MethodPost, "/api/items/"+args[0]+"/adjust", body, &it); err != nil {
				return err
			}
			renderItems(cmd.OutOrStdout(), []item{it})
			if it.LowStock {
				fmt.Fprintln(cmd.OutOrStdout(), "Warning: item is at or below its minimum stock level")
			}
			return nil
		},
	}
	adjust.Flags().IntVar(&delta, "delta", 0, "signed quantity change")
	adjust.MarkFlagRequired("delta")

	cmd.AddCommand(list, lowStock, adjust)
	return cmd
}

func newTable(out io.Writer, header table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(header)
	return t
}

func renderProducts(out io.Writer, products []product) {
	t := newTable(out, table.Row{"ID", "Name", "Supplier code"})
	for _, p := range products {
		code := "-"
		if p.SupplierCode != nil {
			code = *p.SupplierCode
		}
		t.AppendRow(table.Row{p.ID, p.Name, code})
	}
	t.Render()
}

func renderInventories(out io.Writer, inventories []inventory) {
	t := newTable(out, table.Row{"ID", "Name", "Notification email", "Description"})
	for _, inv := range inventories {
		t.AppendRow(table.Row{inv.ID, inv.Name, inv.NotificationEmail, inv.Description})
	}
	t.Render()
}

func renderItems(out io.Writer, items []item) {
	t := newTable(out, table.Row{"ID", "Product", "Inventory", "Quantity", "Minimum", "Low"})
	for _, it := range items {
		low := ""
		if it.LowStock {
			low = "yes"
		}
		t.AppendRow(table.Row{it.ID, it.ProductID, it.InventoryID, it.CurrentQuantity, it.MinimumStockLevel, low})
	}
	t.Render()
}
