package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
	errW   io.Writer

	label   func(a ...any) string
	value   func(a ...any) string
	good    func(a ...any) string
	bad     func(a ...any) string
	faint   func(a ...any) string
	noColor bool
}

// NewOutput creates a new Output formatter writing to w and errW
func NewOutput(format string, w, errW io.Writer, noColor bool) *Output {
	o := &Output{format: format, w: w, errW: errW, noColor: noColor || format == "json"}
	o.label = o.colour(color.FgCyan)
	o.value = o.colour(color.FgHiWhite)
	o.good = o.colour(color.FgGreen, color.Bold)
	o.bad = o.colour(color.FgRed, color.Bold)
	o.faint = o.colour(color.Faint)
	return o
}

func (o *Output) colour(attrs ...color.Attribute) func(a ...any) string {
	c := color.New(attrs...)
	if o.noColor {
		c.DisableColor()
	}
	return c.SprintFunc()
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		_, _ = fmt.Fprintln(o.errW, string(data))
	} else {
		_, _ = fmt.Fprintf(o.errW, "%s %s\n", o.bad("Error:"), err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Card:
		o.printCard(v)
	case CardList:
		o.printCards(v.Cards)
	case CardIDs:
		o.printIDs(v.IDs)
	case CardLinks:
		o.printLinks(v)
	case Count:
		o.printf("%s %d\n", o.label("Cards:"), v.Count)
	case Session:
		o.printSession(v)
	case Deal:
		o.printDeal(v)
	case Outcome:
		o.printOutcome(v)
	case Matchup:
		o.printMatchup(v)
	case Verdict:
		o.printVerdict(v)
	case Report:
		o.printReport(v)
	case ReportList:
		o.printReports(v)
	case Cleared:
		o.printf("Cleared %d report(s)\n", v.Cleared)
	case TokenResult:
		o.printf("%s %s\n%s %d\n", o.label("Token:"), o.value(v.Token), o.label("Seed: "), v.Seed)
	case HashResult:
		o.printf("%s\n", v.Hash)
	case HealthResult:
		o.printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printf(format string, a ...any) {
	_, _ = fmt.Fprintf(o.w, format, a...)
}

// Card response type (matches API)
type Card struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url,omitempty"`
	Stats       [4]int    `json:"stats"`
	Total       int       `json:"total"`
	Colour      string    `json:"colour"`
	CreatedAt   time.Time `json:"created_at"`
}

// CardList response type
type CardList struct {
	Cards []Card `json:"cards"`
}

// CardIDs response type
type CardIDs struct {
	IDs []int64 `json:"ids"`
}

// CardLink response type
type CardLink struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CardLinks response type
type CardLinks struct {
	Links []CardLink `json:"links"`
}

// Count response type
type Count struct {
	Count int `json:"count"`
}

// Session response type
type Session struct {
	Token    string `json:"token"`
	HandSize int    `json:"hand_size"`
	URL      string `json:"url"`
}

// Deal response type
type Deal struct {
	Token    string `json:"token"`
	Seed     uint64 `json:"seed"`
	HandSize int    `json:"hand_size"`
	Hand1    []Card `json:"hand1"`
	Hand2    []Card `json:"hand2"`
}

// Outcome response type
type Outcome struct {
	WinnerID  int64     `json:"winner_id"`
	LoserID   int64     `json:"loser_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Matchup response type
type Matchup struct {
	Card1     Card     `json:"card1"`
	Card2     Card     `json:"card2"`
	Precedent *Outcome `json:"precedent"`
}

// Verdict response type
type Verdict struct {
	Kind          string  `json:"kind"`
	ClaimedWinner int64   `json:"claimed_winner"`
	Precedent     Outcome `json:"precedent"`
}

// Report response type
type Report struct {
	ID        int64     `json:"id"`
	CardID    int64     `json:"card_id"`
	CreatedAt time.Time `json:"created_at"`
	Card      *Card     `json:"card,omitempty"`
}

// ReportList response type
type ReportList struct {
	Reports []Report `json:"reports"`
}

// Cleared response type
type Cleared struct {
	Cleared int `json:"cleared"`
}

// TokenResult pairs a seed with its token
type TokenResult struct {
	Token string `json:"token"`
	Seed  uint64 `json:"seed"`
}

// HashResult holds a generated admin key hash
type HashResult struct {
	Hash string `json:"hash"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printCard(c Card) {
	o.printf("%s %s %s\n", o.label(fmt.Sprintf("#%d", c.ID)), o.value(c.Name), o.faint("("+c.Colour+")"))
	if c.Description != "" {
		o.printf("  %s\n", c.Description)
	}
	stats := make([]string, len(c.Stats))
	for i, v := range c.Stats {
		stats[i] = fmt.Sprintf("%d", v)
	}
	o.printf("  %s %s %s\n", o.label("Stats:"), strings.Join(stats, "/"), o.faint(fmt.Sprintf("(total %d)", c.Total)))
	if c.ImageURL != "" {
		o.printf("  %s %s\n", o.label("Image:"), c.ImageURL)
	}
}

func (o *Output) printCards(cards []Card) {
	if len(cards) == 0 {
		o.printf("No cards\n")
		return
	}
	for _, c := range cards {
		o.printCard(c)
	}
}

func (o *Output) printIDs(ids []int64) {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	o.printf("%s\n", strings.Join(parts, " "))
}

func (o *Output) printLinks(l CardLinks) {
	for _, link := range l.Links {
		o.printf("%s %s\n  %s\n", o.label(fmt.Sprintf("#%d", link.ID)), o.value(link.Name), link.URL)
	}
}

func (o *Output) printSession(s Session) {
	o.printf("%s %s\n", o.label("Token:"), o.value(s.Token))
	o.printf("%s %d\n", o.label("Hand size:"), s.HandSize)
	o.printf("%s %s\n", o.label("Share:"), s.URL)
}

func (o *Output) printDeal(d Deal) {
	o.printf("%s %s %s\n", o.label("Session:"), o.value(d.Token), o.faint(fmt.Sprintf("(seed %d)", d.Seed)))
	o.printf("\n%s\n", o.label("Hand 1:"))
	o.printCards(d.Hand1)
	o.printf("\n%s\n", o.label("Hand 2:"))
	o.printCards(d.Hand2)
}

func (o *Output) printOutcome(p Outcome) {
	o.printf("%s #%d beats #%d %s\n", o.label("Precedent:"), p.WinnerID, p.LoserID,
		o.faint("(set "+p.CreatedAt.Format(time.RFC3339)+")"))
}

func (o *Output) printMatchup(m Matchup) {
	o.printCard(m.Card1)
	o.printf("%s\n", o.faint("  vs"))
	o.printCard(m.Card2)
	if m.Precedent == nil {
		o.printf("%s\n", o.label("No precedent yet"))
		return
	}
	o.printOutcome(*m.Precedent)
}

func (o *Output) printVerdict(v Verdict) {
	switch v.Kind {
	case "new_precedent":
		o.printf("%s #%d beats #%d\n", o.good("New precedent:"), v.Precedent.WinnerID, v.Precedent.LoserID)
	case "upheld":
		o.printf("%s #%d beats #%d\n", o.good("Upheld:"), v.Precedent.WinnerID, v.Precedent.LoserID)
	default:
		o.printf("%s #%d beats #%d, not #%d\n", o.bad("Overruled:"), v.Precedent.WinnerID, v.Precedent.LoserID, v.ClaimedWinner)
	}
}

func (o *Output) printReport(r Report) {
	name := ""
	if r.Card != nil {
		name = " " + o.value(r.Card.Name)
	}
	o.printf("%s card #%d%s %s\n", o.label(fmt.Sprintf("Report %d:", r.ID)), r.CardID, name,
		o.faint(r.CreatedAt.Format(time.RFC3339)))
}

func (o *Output) printReports(l ReportList) {
	if len(l.Reports) == 0 {
		o.printf("No reports\n")
		return
	}
	for _, r := range l.Reports {
		o.printReport(r)
	}
}
