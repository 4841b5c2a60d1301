package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/talentotech/storefront/internal/config"
	"github.com/talentotech/storefront/internal/inventory"
)

type cliTokens struct {
	access string
}

func (t *cliTokens) AccessToken() string { return t.access }

func main() {
	if len(os.Args) < 6 {
		fmt.Println("Usage: go run cmd/add-product/main.go <username> <password> <name> <price> <stock> [category-id]")
		fmt.Println("Example: go run cmd/add-product/main.go admin secret \"Pastel de Choclo\" 4500 20 2")
		os.Exit(1)
	}

	username := os.Args[1]
	password := os.Args[2]
	name := os.Args[3]

	price, err := strconv.ParseFloat(os.Args[4], 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid price %q: %v\n", os.Args[4], err)
		os.Exit(1)
	}
	stock, err := strconv.Atoi(os.Args[5])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid stock %q: %v\n", os.Args[5], err)
		os.Exit(1)
	}
	var categoryID int64
	if len(os.Args) > 6 {
		categoryID, err = strconv.ParseInt(os.Args[6], 10, 64)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Invalid category id %q: %v\n", os.Args[6], err)
			os.Exit(1)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	ctx := context.Background()
	client := inventory.NewClient(cfg.Inventory, logger)

	tokens, err := client.Login(ctx, username, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Login failed: %v\n", err)
		os.Exit(1)
	}
	client.SetTokenSource(&cliTokens{access: tokens.Access})

	product, err := client.CreateProduct(ctx, inventory.ProductInput{
		Name:       name,
		Price:      price,
		Stock:      stock,
		CategoryID: categoryID,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create product: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Product created successfully!\n\n")
	fmt.Printf("Product ID: %d\n", product.ID)
	fmt.Printf("Name: %s\n", product.Name)
	fmt.Printf("Price: %.2f\n", float64(product.Price))
	fmt.Printf("Stock: %d\n", product.Stock)
}
