package cmd

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/spf13/cobra"
	"mufawter/internal/analytics"
	"mufawter/internal/logger"
	"mufawter/internal/pdfexport"
	"mufawter/internal/render"
	"mufawter/pkg/models"
)

var invoicesCmd = &cobra.Command{
	Use:   "invoices",
	Short: "Browse saved invoices and export them as PDF",
	Long: `Browse the invoices saved in the invoice API.

Filters compose with AND: --category matches the invoice type or the Arabic
category label exactly, --month is the calendar month (0 = January ... 11 =
December), --payment matches the payment method case-insensitively, and
--search looks into vendor, invoice number and category.`,
}

var invoicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List invoices, optionally filtered",
	Example: `  # All invoices
  mufawter invoices list

  # Cafe invoices paid by card in March
  mufawter invoices list --category "مقهى" --month 2 --payment visa

  # Distinct categories to filter by
  mufawter invoices list --categories`,
	Args: cobra.NoArgs,
	RunE: runInvoicesList,
}

var invoicesPDFCmd = &cobra.Command{
	Use:   "pdf [id...]",
	Short: "Export invoice images as single-page A4 PDFs",
	Long: `Download the stored image of each invoice and save it as a single-page
A4 PDF named <vendor>_<invoice number>.pdf.`,
	Example: `  mufawter invoices pdf 42
  mufawter invoices pdf 42 43 -d ./pdfs`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInvoicesPDF,
}

func init() {
	rootCmd.AddCommand(invoicesCmd)
	invoicesCmd.AddCommand(invoicesListCmd)
	invoicesCmd.AddCommand(invoicesPDFCmd)

	addFilterFlags(invoicesListCmd)
	invoicesListCmd.Flags().Bool("json", false, "Print invoices as JSON")
	invoicesListCmd.Flags().Bool("categories", false, "Only print the distinct categories")
	invoicesListCmd.Flags().IntP("timeout", "t", defaultTimeoutSecs, "Timeout in seconds")

	invoicesPDFCmd.Flags().StringP("dir", "d", ".", "Directory to write the PDFs to")
	invoicesPDFCmd.Flags().IntP("timeout", "t", defaultTimeoutSecs, "Timeout in seconds")
}

func runInvoicesList(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoices")

	asJSON, _ := cmd.Flags().GetBool("json")
	onlyCategories, _ := cmd.Flags().GetBool("categories")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	criteria, err := readCriteria(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	client, err := newAPIClient(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	all, invoices, err := fetchInvoices(ctx, client, criteria, log)
	if err != nil {
		return handleCommandError(err, "listing invoices", log)
	}

	labels := cfg.Labels()
	if onlyCategories {
		for _, c := range analytics.Categories(all, labels) {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	}

	if asJSON {
		return outputJSON(invoices, "", log)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, render.Title(labels.Invoices(len(invoices))))
	fmt.Fprintln(out, render.Invoices(invoices, labels))
	if len(invoices) > 0 {
		s := analytics.Summarize(invoices)
		fmt.Fprintf(out, "Total: %s   Tax: %s\n", labels.Money(s.Total), labels.Money(s.TotalTax))
	}
	return nil
}

func runInvoicesPDF(cmd *cobra.Command, args []string) error {
	log := logger.WithComponent("invoices-pdf")

	dir, _ := cmd.Flags().GetString("dir")
	timeoutSecs, _ := cmd.Flags().GetInt("timeout")

	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return fmt.Errorf("invalid invoice id %q", arg)
		}
		ids = append(ids, id)
	}

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}
	client, err := newAPIClient(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := createCommandContext(timeoutSecs, log)
	defer cancel()

	all, err := client.ListInvoices(ctx)
	if err != nil {
		return handleCommandError(err, "loading invoices", log)
	}
	byID := make(map[int64]models.Invoice, len(all))
	for _, inv := range all {
		byID[inv.ID] = inv
	}

	exporter := pdfexport.NewExporter(&http.Client{Timeout: cfg.HTTPTimeout()})
	out := cmd.OutOrStdout()

	for _, id := range ids {
		inv, ok := byID[id]
		if !ok {
			return fmt.Errorf("invoice #%d not found", id)
		}

		path, err := exporter.Export(ctx, inv, dir)
		if err != nil {
			return handleCommandError(err, fmt.Sprintf("exporting invoice #%d", id), log)
		}
		fmt.Fprintf(out, "✅ #%d → %s\n", id, path)
	}
	return nil
}
