package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ppiankov/phishlens/internal/model"
)

var verdictMarks = map[model.Verdict]string{
	model.VerdictProbablySafe: "✓",
	model.VerdictSuspicious:   "⚠️ ",
	model.VerdictMalicious:    "✗",
}

// renderSummary prints the operator-facing report of one analysis
func renderSummary(w io.Writer, r *model.AnalysisResult) {
	fmt.Fprintf(w, "%s %s  score %d/100\n", verdictMarks[r.Verdict], r.Verdict, r.RiskScore)
	fmt.Fprintf(w, "  Input:     %s\n", r.URLInput)
	fmt.Fprintf(w, "  Final URL: %s\n", r.FinalURL)
	fmt.Fprintf(w, "  Domain:    %s\n", r.Domain)
	if len(r.Meta.RedirectChain) > 0 {
		fmt.Fprintf(w, "  Redirects: %s\n", strings.Join(r.Meta.RedirectChain, " → "))
	}
	if r.Meta.WhoisAgeDays != nil {
		fmt.Fprintf(w, "  Age:       %d days\n", *r.Meta.WhoisAgeDays)
	}
	fmt.Fprintf(w, "  Lists:     openphish=%s phishtank=%s safe_browsing=%s\n",
		r.Meta.Blacklists.OpenPhish, r.Meta.Blacklists.PhishTank, r.Meta.Blacklists.SafeBrowsing)

	fmt.Fprintln(w)
	if len(r.Signals) == 0 {
		fmt.Fprintln(w, "  No risk signals.")
	} else {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "  WEIGHT\tSIGNAL\tDETAIL")
		for _, s := range r.Signals {
			fmt.Fprintf(tw, "  +%d\t%s\t%s\n", s.Weight, s.Name, s.Detail)
		}
		_ = tw.Flush()
	}

	if r.Explanation != nil && r.Explanation.SummaryMD != "" {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Explanation (%s/%s):\n", r.Explanation.Provider, r.Explanation.Model)
		fmt.Fprintln(w, r.Explanation.SummaryMD)
	}
}

// renderHistory prints stored analyses as a table, newest first
func renderHistory(w io.Writer, records []model.AnalysisResult) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No analyses recorded.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tSCORE\tVERDICT\tDOMAIN\tINPUT")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04"), r.RiskScore, r.Verdict, r.Domain, r.URLInput)
	}
	_ = tw.Flush()
}
