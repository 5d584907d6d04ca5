package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"finbook/internal/amqp"
	"finbook/internal/cli"
	"finbook/internal/config"
	"finbook/internal/core"
	"finbook/internal/log"
	"finbook/internal/services"
	"finbook/internal/store"
)

type app struct {
	recorder     *services.Recorder
	transactions *store.TransactionStore
	summary      *store.SummaryLedger
	settings     *store.SettingsStore
	cfg          *config.Config
	in           *bufio.Reader
	logger       *log.Logger
}

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	transactions, err := store.NewTransactionStore(cfg.TransactionsFile, logger)
	if err != nil {
		// Load failures are recoverable: the store resets itself empty.
		logger.Warn("Transaction store started from an empty state",
			log.FieldFile, cfg.TransactionsFile, log.FieldError, err)
	}
	summary, err := store.NewSummaryLedger(cfg.SummaryFile, logger)
	if err != nil {
		logger.Warn("Summary ledger started from an empty state",
			log.FieldFile, cfg.SummaryFile, log.FieldError, err)
	}
	settings, err := store.NewSettingsStore(cfg.SettingsFile, logger)
	if err != nil {
		logger.Warn("Settings store reset to defaults",
			log.FieldFile, cfg.SettingsFile, log.FieldError, err)
	}

	// AMQP is optional: without a broker the ledger still works, the
	// archive mirror just stays behind.
	var events services.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without event publishing",
				log.FieldError, err)
		} else {
			defer amqpClient.Close()
			events = amqpClient
			logger.Info("AMQP client initialized", log.FieldExchange, cfg.AMQPExchange)
		}
	} else {
		logger.Info("AMQP disabled - recorded transactions will not reach the archive")
	}

	a := &app{
		recorder:     services.NewRecorder(transactions, summary, settings, events, logger),
		transactions: transactions,
		summary:      summary,
		settings:     settings,
		cfg:          cfg,
		in:           bufio.NewReader(os.Stdin),
		logger:       logger,
	}
	a.run()
}

func (a *app) run() {
	for {
		fmt.Println()
		fmt.Println("=== finbook ===")
		fmt.Println("1. Add income")
		fmt.Println("2. Add expense")
		fmt.Println("3. View transactions")
		fmt.Println("4. Balance and categories")
		fmt.Println("5. Monthly summary")
		fmt.Println("6. Yearly summary")
		fmt.Println("7. Set monthly limit")
		fmt.Println("8. Rebuild summary")
		fmt.Println("9. Quit")

		choice, ok := a.prompt("Choose an option: ")
		if !ok {
			fmt.Println()
			return
		}
		switch choice {
		case "1":
			a.addTransaction(core.Income)
		case "2":
			a.addTransaction(core.Expense)
		case "3":
			a.viewTransactions()
		case "4":
			a.viewBalance()
		case "5":
			a.monthlySummary()
		case "6":
			a.yearlySummary()
		case "7":
			a.setMonthlyLimit()
		case "8":
			a.rebuildSummary()
		case "9":
			fmt.Println("Bye.")
			return
		default:
			fmt.Println("Unknown option.")
		}
	}
}

// prompt reads one trimmed input line. ok is false on stdin EOF, which
// ends the session; the caller must unwind so deferred cleanup runs.
func (a *app) prompt(label string) (string, bool) {
	fmt.Print(label)
	line, err := a.in.ReadString('\n')
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (a *app) promptAmount() (float64, bool) {
	raw, ok := a.prompt("Amount: ")
	if !ok {
		return 0, false
	}
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil || amount <= 0 {
		fmt.Println("Amount must be a positive number.")
		return 0, false
	}
	return amount, true
}

func (a *app) addTransaction(typ core.TransactionType) {
	amount, ok := a.promptAmount()
	if !ok {
		return
	}
	category, ok := a.prompt("Category: ")
	if !ok {
		return
	}
	description, ok := a.prompt("Description: ")
	if !ok {
		return
	}

	tx, err := a.recorder.RecordNew(context.Background(), amount, category, description, typ)
	if err != nil {
		if errors.Is(err, services.ErrSummaryStale) {
			fmt.Println("Transaction recorded, but the monthly summary could not be updated.")
			fmt.Println("Run 'Rebuild summary' to bring it back in sync.")
			return
		}
		fmt.Printf("Could not record transaction: %v\n", err)
		return
	}
	fmt.Printf("Recorded %s of %.2f in %s.\n", typ, tx.Amount, tx.Category)

	if typ == core.Expense {
		a.warnIfOverLimit(tx.MonthKey())
	}
}

func (a *app) warnIfOverLimit(month string) {
	check := a.recorder.CheckLimit(month)
	if check.Exceeded {
		fmt.Printf("Warning: spent %.2f this month, over the limit of %.2f.\n",
			check.Spent, check.Limit)
	}
}

func (a *app) viewTransactions() {
	limit := a.cfg.ViewLimit
	fmt.Printf("\nLast %d incomes:\n", limit)
	printTransactions(lastN(a.transactions.ByType(core.Income), limit))
	fmt.Printf("\nLast %d expenses:\n", limit)
	printTransactions(lastN(a.transactions.ByType(core.Expense), limit))
}

func lastN(txs []core.Transaction, n int) []core.Transaction {
	if len(txs) <= n {
		return txs
	}
	return txs[len(txs)-n:]
}

func printTransactions(txs []core.Transaction) {
	if len(txs) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, tx := range txs {
		fmt.Printf("  %s  %8.2f  %-15s %s\n", tx.Date, tx.Amount, tx.Category, tx.Description)
	}
}

func (a *app) viewBalance() {
	b := a.transactions.Balance()
	fmt.Printf("\nTotal income:  %.2f\n", b.TotalIncome)
	fmt.Printf("Total expense: %.2f\n", b.TotalExpense)
	fmt.Printf("Balance:       %.2f\n", b.Balance)

	cats := a.transactions.Categories()
	fmt.Printf("Income categories:  %s\n", strings.Join(cats.Income, ", "))
	fmt.Printf("Expense categories: %s\n", strings.Join(cats.Expense, ", "))
}

func (a *app) monthlySummary() {
	month, ok := a.prompt("Month (YYYY-MM, empty for current): ")
	if !ok {
		return
	}
	if month == "" {
		month = time.Now().Format(core.MonthLayout)
	}
	s := a.summary.Get(month)
	fmt.Printf("\n%s  income %.2f  expense %.2f  net %.2f\n", month, s.Income, s.Expense, s.Net)
	a.warnIfOverLimit(month)
}

func (a *app) yearlySummary() {
	year, ok := a.prompt("Year (YYYY, empty for current): ")
	if !ok {
		return
	}
	if year == "" {
		year = time.Now().Format("2006")
	}
	s := a.summary.YearlySummary(year)
	fmt.Printf("\n%s  income %.2f  expense %.2f  net %.2f\n", year, s.Income, s.Expense, s.Net)
}

func (a *app) setMonthlyLimit() {
	raw, ok := a.prompt("Monthly limit (0 disables): ")
	if !ok {
		return
	}
	limit, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		fmt.Println("Limit must be a number.")
		return
	}
	if err := a.settings.SetMonthlyLimit(limit); err != nil {
		fmt.Printf("Could not set limit: %v\n", err)
		return
	}
	fmt.Printf("Monthly limit set to %.2f.\n", limit)
}

func (a *app) rebuildSummary() {
	if err := a.recorder.Reconcile(); err != nil {
		fmt.Printf("Rebuild failed: %v\n", err)
		return
	}
	fmt.Printf("Summary rebuilt from %d transactions.\n", a.transactions.Count())
}
