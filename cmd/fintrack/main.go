// Command fintrack is a terminal client for the finance tracker API.
//
//	fintrack [-token-file path] list
//	fintrack add -amount 42.5 -description Lunch -type expense [-category Food]
//	fintrack delete <id>
//	fintrack summary
//
// The token comes from FINTRACK_TOKEN or -token-file; the API from API_BASE_URL.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"finance_tracker/internal/client"
	"finance_tracker/internal/domain"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logrus.SetOutput(os.Stderr)

	tokenFile := flag.String("token-file", "", "file holding the ID token")
	baseURL := flag.String("api", os.Getenv("API_BASE_URL"), "API base URL")
	wait := flag.Duration("identity-wait", client.DefaultIdentityWait, "how long to wait for the token")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() == 0 {
		usage()
		os.Exit(2)
	}

	session := client.NewSession()
	session.IdentityWait = *wait
	go loadIdentity(session, *tokenFile)

	c := client.New(*baseURL, session)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := run(ctx, c, flag.Arg(0), flag.Args()[1:]); err != nil {
		logrus.WithError(err).WithField("command", flag.Arg(0)).Warn("Command failed")
		fmt.Fprintf(os.Stderr, "fintrack: %s failed\n", flag.Arg(0))
		os.Exit(1)
	}
}

// loadIdentity resolves the session from the environment or a token file
func loadIdentity(session *client.Session, tokenFile string) {
	if token := strings.TrimSpace(os.Getenv("FINTRACK_TOKEN")); token != "" {
		session.SetUser(client.StaticToken(token))
		return
	}
	if tokenFile == "" {
		session.SetUser(nil)
		return
	}
	raw, err := os.ReadFile(tokenFile)
	if err != nil {
		logrus.WithError(err).Warn("Could not read token file")
		session.SetUser(nil)
		return
	}
	session.SetUser(client.StaticToken(strings.TrimSpace(string(raw))))
}

func run(ctx context.Context, c *client.Client, cmd string, args []string) error {
	switch cmd {
	case "list":
		txs, err := c.ListTransactions(ctx)
		if err != nil {
			return err
		}
		printTransactions(txs)
	case "add":
		fs := flag.NewFlagSet("add", flag.ExitOnError)
		amount := fs.Float64("amount", 0, "positive amount")
		description := fs.String("description", "", "description")
		typ := fs.String("type", "", "income or expense")
		category := fs.String("category", "", "category, defaults to Other")
		if err := fs.Parse(args); err != nil {
			return err
		}
		tx, err := c.AddTransaction(ctx, client.NewTransaction{
			Amount:      *amount,
			Description: *description,
			Type:        *typ,
			Category:    *category,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Added %s %.2f %q (%s) as %s\n", tx.Type, tx.Amount, tx.Description, tx.Category, tx.ID)
	case "delete":
		if len(args) != 1 {
			return fmt.Errorf("delete takes exactly one transaction id")
		}
		if err := c.DeleteTransaction(ctx, args[0]); err != nil {
			return err
		}
		fmt.Println("Transaction deleted")
	case "summary":
		sum, err := c.Summary(ctx)
		if err != nil {
			return err
		}
		printSummary(sum)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func printTransactions(txs []domain.Transaction) {
	if len(txs) == 0 {
		fmt.Println("No transactions yet")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTYPE\tAMOUNT\tCATEGORY\tDESCRIPTION")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%s\n",
			tx.ID, tx.CreatedAt.Local().Format("2006-01-02 15:04"), tx.Type, tx.Amount, tx.Category, tx.Description)
	}
	w.Flush()
}

func printSummary(sum domain.Summary) {
	fmt.Printf("Income:   %10.2f\n", sum.TotalIncome)
	fmt.Printf("Expenses: %10.2f\n", sum.TotalExpense)
	fmt.Printf("Balance:  %10.2f\n", sum.Balance)
	fmt.Printf("Transactions: %d\n", sum.Count)
	if len(sum.Categories) == 0 {
		return
	}
	fmt.Println("\nExpenses by category:")
	for _, c := range sum.Categories {
		fmt.Printf("  %-16s %10.2f\n", c.Category, c.Total)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage: fintrack [flags] list|add|delete <id>|summary\n\n")
	flag.PrintDefaults()
}
