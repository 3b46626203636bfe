package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"leaddesk/cmd/leaddesk/ui"
	"leaddesk/internal/api"
	"leaddesk/internal/leads"
	"leaddesk/internal/notify"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// leadsCmd groups the lead operations
var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List, view, create, update and delete leads",
}

var leadsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List leads, one page at a time",
	Long: `Lists one page of leads. --search filters by email (contains) and
keeps applying to whichever page is requested.

Example:
  leaddesk leads list --search acme --page 2`,
	Args: cobra.NoArgs,
	RunE: runLeadsList,
}

var leadsGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show one lead",
	Args:  cobra.ExactArgs(1),
	RunE:  runLeadsGet,
}

var leadsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a lead",
	Long: `Creates a lead. First name, last name, email and source are required.

Sources: website, facebook_ads, google_ads, referral, events, other
Statuses: new, contacted, qualified, lost, won`,
	Args: cobra.NoArgs,
	RunE: runLeadsCreate,
}

var leadsUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a lead",
	Long: `Fetches the lead, applies the flags that were given and sends the
whole record back. Fields without a flag keep their current value.`,
	Args: cobra.ExactArgs(1),
	RunE: runLeadsUpdate,
}

var leadsDeleteCmd = &cobra.Command{
	Use:   "delete [id...]",
	Short: "Delete one or more leads",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLeadsDelete,
}

var (
	listPage   int
	listLimit  int
	listSearch string
	listJSON   bool

	getJSON bool

	deleteYes bool

	createFlags leadFlags
	updateFlags leadFlags
)

// deleteConcurrency bounds parallel deletes.
const deleteConcurrency = 4

func init() {
	leadsListCmd.Flags().IntVar(&listPage, "page", 1, "Page number")
	leadsListCmd.Flags().IntVar(&listLimit, "limit", 0, "Leads per page (default from config)")
	leadsListCmd.Flags().StringVar(&listSearch, "search", "", "Filter by email")
	leadsListCmd.Flags().BoolVar(&listJSON, "json", false, "Print the raw page as JSON")

	leadsGetCmd.Flags().BoolVar(&getJSON, "json", false, "Print the lead as JSON")

	leadsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Skip confirmation")

	createFlags.register(leadsCreateCmd)
	updateFlags.register(leadsUpdateCmd)

	leadsCmd.AddCommand(leadsListCmd)
	leadsCmd.AddCommand(leadsGetCmd)
	leadsCmd.AddCommand(leadsCreateCmd)
	leadsCmd.AddCommand(leadsUpdateCmd)
	leadsCmd.AddCommand(leadsDeleteCmd)
}

// leadFlags are the editable lead fields as flags. Only flags the user
// set are applied to the form.
type leadFlags struct {
	firstName, lastName, email, phone, company, city, state string
	source, status, score, value                             string
	qualified                                                bool
}

func (f *leadFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.firstName, "first-name", "", "First name")
	fs.StringVar(&f.lastName, "last-name", "", "Last name")
	fs.StringVar(&f.email, "email", "", "Email")
	fs.StringVar(&f.phone, "phone", "", "Phone")
	fs.StringVar(&f.company, "company", "", "Company")
	fs.StringVar(&f.city, "city", "", "City")
	fs.StringVar(&f.state, "state", "", "State")
	fs.StringVar(&f.source, "source", "", "Source")
	fs.StringVar(&f.status, "status", "", "Status (default new)")
	fs.StringVar(&f.score, "score", "", "Score, 0-100")
	fs.StringVar(&f.value, "value", "", "Lead value")
	fs.BoolVar(&f.qualified, "qualified", false, "Mark as qualified")
}

func (f *leadFlags) apply(cmd *cobra.Command, form *leads.Form) {
	set := func(name string, dst *string, v string) {
		if cmd.Flags().Changed(name) {
			*dst = v
		}
	}
	set("first-name", &form.FirstName, f.firstName)
	set("last-name", &form.LastName, f.lastName)
	set("email", &form.Email, f.email)
	set("phone", &form.Phone, f.phone)
	set("company", &form.Company, f.company)
	set("city", &form.City, f.city)
	set("state", &form.State, f.state)
	set("score", &form.Score, f.score)
	set("value", &form.LeadValue, f.value)
	if cmd.Flags().Changed("source") {
		form.Source = leads.Source(strings.ToLower(strings.TrimSpace(f.source)))
	}
	if cmd.Flags().Changed("status") {
		form.Status = leads.Status(strings.ToLower(strings.TrimSpace(f.status)))
	}
	if cmd.Flags().Changed("qualified") {
		form.IsQualified = f.qualified
	}
}

func runLeadsList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	limit := listLimit
	if limit <= 0 {
		limit = a.cfg.GetPageSize()
	}
	b := leads.NewBrowser(limit)
	if listSearch != "" {
		b.Search(listSearch)
	}
	q, err := b.PageQuery(listPage)
	if err != nil {
		return err
	}

	page, err := a.client.ListLeads(ctx, q)
	if err != nil {
		logger.Error("list leads", zap.Error(err), zap.Int("page", q.Page))
		a.printer.Error("Failed to fetch leads")
		return errReported
	}
	b.Apply(q, *page)

	out := cmd.OutOrStdout()
	if listJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}

	if len(b.Rows()) == 0 {
		a.printer.Print("No leads found")
		return nil
	}

	t := notify.NewTable(out, []string{"ID", "Name", "Email", "Company", "Source", "Status", "Score", "Value", "Qualified"})
	for _, l := range b.Rows() {
		score := ""
		if l.Score != nil {
			score = strconv.Itoa(*l.Score)
		}
		value := ""
		if l.LeadValue != nil {
			value = leads.FormatValue(*l.LeadValue)
		}
		qualified := "No"
		if l.IsQualified {
			qualified = "Yes"
		}
		t.AddRow(string(l.ID), l.FullName(), l.Email, l.Company, l.Source.Label(),
			a.printer.StatusBadge(string(l.Status.Style()), l.Status.Label()), score, value, qualified)
	}
	if err := t.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	footer := b.Showing()
	if b.ShowPager() {
		footer += " · " + b.PageText()
	}
	a.printer.Print("%s", a.printer.Dim(footer))
	return nil
}

func runLeadsGet(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	l, err := a.client.GetLead(ctx, leads.ID(args[0]))
	if err != nil || l == nil {
		logger.Error("get lead", zap.String("id", args[0]), zap.Error(err))
		if errors.Is(err, api.ErrNotFound) {
			a.printer.Error("Lead %s not found", args[0])
		} else {
			a.printer.Error("Failed to load lead")
		}
		return errReported
	}

	out := cmd.OutOrStdout()
	if getJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	}

	md := ui.LeadMarkdown(*l)
	if !notify.ResolveColors(noColor) {
		fmt.Fprintln(out, md)
		return nil
	}
	var r ui.MarkdownRenderer
	fmt.Fprintln(out, r.Render(md, 80, ui.ThemeFor(a.cfg.UI.Theme).IsDark))
	return nil
}

// saveLead validates form and sends it. Validation failures never reach
// the server.
func (a *app) saveLead(cmd *cobra.Command, form leads.Form) error {
	in, err := form.Validate()
	if err != nil {
		return a.reportValidation(err)
	}

	var saved *leads.Lead
	if form.Editing() {
		saved, err = a.client.UpdateLead(cmd.Context(), form.ID, in)
	} else {
		saved, err = a.client.CreateLead(cmd.Context(), in)
	}
	if err != nil {
		logger.Error("save lead", zap.String("id", string(form.ID)), zap.Error(err))
		a.printer.Error("%s", notify.MessageOr(err, "Failed to save lead"))
		return errReported
	}

	if form.Editing() {
		a.printer.Success("Lead updated successfully")
	} else {
		a.printer.Success("Lead created successfully")
	}
	if saved != nil && saved.ID != "" {
		a.printer.Print("id: %s", saved.ID)
	}
	return nil
}

func runLeadsCreate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, err := a.requireSession(cmd.Context()); err != nil {
		return err
	}

	form := leads.NewForm()
	createFlags.apply(cmd, &form)
	return a.saveLead(cmd, form)
}

func runLeadsUpdate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	l, err := a.client.GetLead(ctx, leads.ID(args[0]))
	if err != nil || l == nil {
		logger.Error("load lead for update", zap.String("id", args[0]), zap.Error(err))
		a.printer.Error("Failed to load lead")
		return errReported
	}

	form := leads.FormFromLead(*l)
	updateFlags.apply(cmd, &form)
	return a.saveLead(cmd, form)
}

func runLeadsDelete(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}

	if !deleteYes {
		question := fmt.Sprintf("Are you sure you want to delete lead %s? [y/N]", args[0])
		if len(args) > 1 {
			question = fmt.Sprintf("Are you sure you want to delete %d leads (%s)? [y/N]", len(args), strings.Join(args, ", "))
		}
		answer, err := newPrompter(cmd).ask(question)
		if err != nil {
			return err
		}
		if ans := strings.ToLower(answer); ans != "y" && ans != "yes" {
			a.printer.Info("Cancelled")
			return nil
		}
	}

	errs := make([]error, len(args))
	var g errgroup.Group
	g.SetLimit(deleteConcurrency)
	for i, id := range args {
		g.Go(func() error {
			errs[i] = a.client.DeleteLead(ctx, leads.ID(id))
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for i, id := range args {
		if errs[i] != nil {
			failed++
			logger.Error("delete lead", zap.String("id", id), zap.Error(errs[i]))
			a.printer.Error("Failed to delete lead %s", id)
			continue
		}
		a.printer.Success("Lead deleted successfully (%s)", id)
	}
	if failed > 0 {
		return errReported
	}
	return nil
}
