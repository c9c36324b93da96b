package parse

import (
	"regexp"
	"strings"

	"analyseman/internal/domain"
	"analyseman/internal/ports"
)

// PartialTrade holds whatever fields the extractor could establish from a
// single message. Pnl is the only field required for the message to count
// as a trade report.
type PartialTrade struct {
	Side     domain.Side
	Symbol   string
	Entry    *float64
	Exit     *float64
	Leverage *float64
	Pnl      *float64
}

// Input is the text of one message split into scannable fragments, already
// stripped of chat markup. AuthorTags repeats the embed author lines, which
// take priority when resolving PnL (signal services post "name ±x.xx%"
// there by convention).
type Input struct {
	AuthorTags []string
	Parts      []string
}

var (
	codeBlockRe   = regexp.MustCompile("```(?s:.*?)```")
	customEmojiRe = regexp.MustCompile(`<a?:[A-Za-z0-9_]+:\d+>`)

	sideRe     = regexp.MustCompile(`(?i)\b(LONG|SHORT)\b`)
	leverageRe = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:x\b|×)`)
	symbolRe   = regexp.MustCompile(`\b([A-Z]{2,12})(?:-?PERP|USDT|USD|USDC)?\b`)
	pairRe     = regexp.MustCompile(`\b([A-Z]{2,12})/[A-Z]{2,6}\b`)
	quoteSufRe = regexp.MustCompile(`(USDT|USD|USDC)$`)
	entryRe    = regexp.MustCompile(`(?i)\b(?:entry|ingang|open|in)\b\s*[:\-]?\s*([+\-\x{2212}\x{2013}]?\$?[\d.,_kK]+)`)
	exitRe     = regexp.MustCompile(`(?i)\b(?:exit|close|sluit|out)\b\s*[:\-]?\s*([+\-\x{2212}\x{2013}]?\$?[\d.,_kK]+)`)
	percentRe  = regexp.MustCompile(`([+\-\x{2212}\x{2013}]?[\d.,]+)\s*%`)
	labeledRe  = regexp.MustCompile(`(?i)\b(?:pnl|p&l|roi|return)\b\s*[:\-]?\s*([+\-\x{2212}\x{2013}]?[\d.,]+)\s*%`)
)

// CleanFragment strips chat markup (code blocks, backticks, bold markers,
// custom emoji) and collapses whitespace so the field finders see plain
// single-line text.
func CleanFragment(s string) string {
	s = codeBlockRe.ReplaceAllString(s, " ")
	s = strings.ReplaceAll(s, "`", " ")
	s = strings.ReplaceAll(s, "**", " ")
	s = customEmojiRe.ReplaceAllString(s, " ")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// InputFromMessage gathers every text fragment of a message: the plain
// content plus all embed parts. Embed author names land in both AuthorTags
// and Parts, mirroring how the fragments are scanned.
func InputFromMessage(msg ports.ChatMessage) Input {
	var in Input
	add := func(raw string, authorTag bool) {
		if raw == "" {
			return
		}
		c := CleanFragment(raw)
		if c == "" {
			return
		}
		if authorTag {
			in.AuthorTags = append(in.AuthorTags, c)
		}
		in.Parts = append(in.Parts, c)
	}

	add(msg.Content, false)
	for _, e := range msg.Embeds {
		add(e.AuthorName, true)
		add(e.Title, false)
		add(e.Description, false)
		for _, f := range e.Fields {
			add(f.Name, false)
			add(f.Value, false)
		}
		add(e.Footer, false)
	}
	return in
}

// InputFromText wraps a single free-text fragment.
func InputFromText(text string) Input {
	c := CleanFragment(text)
	if c == "" {
		return Input{}
	}
	return Input{Parts: []string{c}}
}

func (in Input) joined() string {
	return strings.Join(in.Parts, " ")
}

// ExtractTrade scans a message for trade-report fields. It returns nil when
// no PnL can be established by any path; such messages are not trades.
func ExtractTrade(in Input) *PartialTrade {
	text := in.joined()
	if text == "" {
		return nil
	}

	pt := &PartialTrade{
		Side:     findSide(text),
		Symbol:   findSymbol(text),
		Entry:    findNumberAfter(entryRe, text),
		Exit:     findNumberAfter(exitRe, text),
		Leverage: findLeverage(text),
	}

	for _, resolve := range pnlChain {
		if v, ok := resolve(in); ok {
			v = domain.ClampPnl(v)
			pt.Pnl = &v
			return pt
		}
	}

	// Last resort: derive from prices when direction is known.
	if pt.Side != domain.SideUnknown && pt.Entry != nil && pt.Exit != nil {
		if v, ok := ComputePnlPercent(pt.Side, *pt.Entry, *pt.Exit); ok {
			v = domain.ClampPnl(v)
			pt.Pnl = &v
			return pt
		}
	}
	return nil
}

// pnlChain is the ordered fallback chain for resolving an explicit PnL.
// Each step is attempted only if the previous one yields nothing; adding a
// new text convention means appending one more function.
var pnlChain = []func(in Input) (float64, bool){
	pnlFromAuthorTag,
	pnlFromLabel,
	pnlFromLonePercent,
}

// pnlFromAuthorTag looks for a percentage inside an embed author line, the
// "name ±x.xx%" convention used by signal services.
func pnlFromAuthorTag(in Input) (float64, bool) {
	for _, tag := range in.AuthorTags {
		m := percentRe.FindStringSubmatch(tag)
		if m == nil {
			continue
		}
		if v, ok := NormalizeNumber(m[1]); ok && v >= -domain.MaxPnlPercent && v <= domain.MaxPnlPercent {
			return v, true
		}
	}
	return 0, false
}

// pnlFromLabel accepts the first percentage directly following an explicit
// label word (pnl, p&l, roi, return).
func pnlFromLabel(in Input) (float64, bool) {
	m := labeledRe.FindStringSubmatch(in.joined())
	if m == nil {
		return 0, false
	}
	return NormalizeNumber(m[1])
}

// pnlFromLonePercent accepts an unlabeled percentage only when it is the
// single one in the whole message. Two or more are too ambiguous to pick
// from, so the step yields nothing in that case.
func pnlFromLonePercent(in Input) (float64, bool) {
	var values []float64
	for _, m := range percentRe.FindAllStringSubmatch(in.joined(), -1) {
		if v, ok := NormalizeNumber(m[1]); ok {
			values = append(values, v)
		}
	}
	if len(values) == 1 {
		return values[0], true
	}
	return 0, false
}

func findSide(text string) domain.Side {
	m := sideRe.FindStringSubmatch(text)
	if m == nil {
		return domain.SideUnknown
	}
	return domain.Side(strings.ToUpper(m[1]))
}

func findLeverage(text string) *float64 {
	m := leverageRe.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	if v, ok := NormalizeNumber(m[1]); ok && v > 0 {
		return &v
	}
	return nil
}

// findSymbol picks the first uppercase alphabetic run of 2-12 characters,
// stripping a known quote-currency suffix. Side keywords are skipped so
// "LONG BTC" still resolves to BTC. Falls back to BASE/QUOTE notation.
func findSymbol(text string) string {
	for _, m := range symbolRe.FindAllStringSubmatch(text, -1) {
		cand := m[1]
		if cand == "LONG" || cand == "SHORT" || cand == "PERP" {
			continue
		}
		cand = quoteSufRe.ReplaceAllString(cand, "")
		if len(cand) >= 2 {
			return cand
		}
	}
	if m := pairRe.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

// findNumberAfter extracts the signed, possibly k-suffixed number following
// an entry/exit label and runs it through the normalizer.
func findNumberAfter(re *regexp.Regexp, text string) *float64 {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	if v, ok := NormalizeNumber(ExpandSuffix(m[1])); ok {
		return &v
	}
	return nil
}
