package main

import (
	"fmt"
	"io"
	"strings"

	"weeklypay_go/internal/app"
	"weeklypay_go/internal/calc"
	"weeklypay_go/internal/domain"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#0f766e"))
	openStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#00c853"))
	closedStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).Foreground(lipgloss.Color("#ffffff")).Background(lipgloss.Color("#757575"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5252"))
	cardStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#0f766e")).Padding(0, 1)

	printer = message.NewPrinter(language.English)
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the dashboard header and this week's distributions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			bootstrap := app.NewBootstrap(cfgFile)
			bootstrap.LogLevel = "error"
			if err := bootstrap.Initialize(); err != nil {
				return fmt.Errorf("bootstrapping failed: %w", err)
			}

			snap := bootstrap.Quotes.Get(cmd.Context(), bootstrap.Catalog.Symbols())
			return renderStatus(cmd.OutOrStdout(), statusView{
				Session:  bootstrap.Sessions.Current(),
				Snapshot: snap,
				Schedule: bootstrap.Catalog.Schedule(),
				Top:      bootstrap.Catalog.Top(),
				Funds:    bootstrap.Catalog.All(),
				TaxRate:  bootstrap.Config.Calc.TaxRate,
			})
		},
	}
}

type statusView struct {
	Session  domain.SessionStatus
	Snapshot domain.QuoteSnapshot
	Schedule domain.PayoutSchedule
	Top      domain.ETF
	Funds    []domain.ETF
	TaxRate  decimal.Decimal
}

func renderStatus(w io.Writer, v statusView) error {
	badge := openStyle
	if v.Session.Kind.IsClosed() {
		badge = closedStyle
	}

	var header strings.Builder
	header.WriteString(badge.Render(v.Session.Label))
	header.WriteString("\n")
	header.WriteString(titleStyle.Render("Roundhill WeeklyPay™ · " + v.Schedule.Week))
	header.WriteString("\n")
	fmt.Fprintf(&header, "🇺🇸 1$ = %s KRW  %s\n", formatKRW(v.Snapshot.FXRate), mutedStyle.Render("as of "+v.Snapshot.FetchedAtLabel()))
	fmt.Fprintf(&header, "Buy by %s · Ex %s · Pay %s\n", v.Schedule.BuyLimit, v.Schedule.ExDate, v.Schedule.PayDate)
	fmt.Fprintf(&header, "🏆 Top payer: %s %s%%", v.Top.Ticker, v.Top.Rate.StringFixed(2))

	if _, err := fmt.Fprintln(w, cardStyle.Render(header.String())); err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "%-6s %10s %10s %12s %9s\n",
		headerStyle.Render("ETF"),
		headerStyle.Render("Price"),
		headerStyle.Render("Div"),
		headerStyle.Render("Net KRW"),
		headerStyle.Render("Rate"),
	); err != nil {
		return err
	}

	for _, etf := range v.Funds {
		price := warnStyle.Render("n/a")
		if p := v.Snapshot.Price(etf.Ticker); p.IsPositive() {
			price = "$" + p.StringFixed(2)
		}

		div, net := "-", "-"
		if etf.PaysDividend() {
			div = "$" + etf.Dividend.StringFixed(4)
			if income, err := calc.PerShare(etf, v.Snapshot.FXRate, v.TaxRate); err == nil {
				net = formatKRW(income.NetKRW)
			}
		}

		rate := "-"
		if etf.Rate.IsPositive() {
			rate = etf.Rate.StringFixed(2) + "%"
		}

		if _, err := fmt.Fprintf(w, "%-6s %10s %10s %12s %9s\n",
			etf.Ticker, price, div, net, rate); err != nil {
			return err
		}
	}
	return nil
}

// formatKRW renders a won amount rounded to whole units with thousands separators.
func formatKRW(d decimal.Decimal) string {
	return printer.Sprintf("%d", d.Round(0).IntPart())
}
