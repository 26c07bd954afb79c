// Package extract parses fetched pages and evaluates phishing content heuristics
package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ppiankov/phishlens/internal/domain"
	"github.com/ppiankov/phishlens/internal/model"
)

// Anti-inspection trick identifiers recorded in ContentMeta.Tricks
const (
	TrickRightClickBlocked = "right_click_blocked"
	TrickTimerScheduling   = "timer_scheduling"
)

// pressureKeywords is matched against lowercased visible text, in this order
var pressureKeywords = []string{
	"senha", "cpf", "cartao", "cartão", "cvv", "token", "codigo", "código",
	"verificação", "atualização", "urgente", "bloqueio", "desbloqueio", "pix",
	"2fa", "otp", "login", "acesso", "fatura", "premio", "prêmio",
	"password", "verify your account", "suspended", "unusual activity",
}

// sensitiveFieldFragments flag an input whose name contains any of them
var sensitiveFieldFragments = []string{"cpf", "cvv", "token", "otp", "2fa", "senha"}

var loginPhrases = []string{"login", "sign in", "acesso"}

var (
	refreshURLPattern = regexp.MustCompile(`(?i)url=([^;]+)`)
	timerPattern      = regexp.MustCompile(`setTimeout\(.*?\)`)
)

// ContentAnalyzer evaluates form, keyword and trick heuristics on HTML
type ContentAnalyzer struct {
	keywords []string
}

// NewContentAnalyzer creates an analyzer with the built-in keyword lexicon
func NewContentAnalyzer() *ContentAnalyzer {
	return &ContentAnalyzer{keywords: pressureKeywords}
}

// Analyze parses htmlContent relative to baseURL. Unparseable input yields
// an empty ContentMeta.
func (a *ContentAnalyzer) Analyze(htmlContent, baseURL string) model.ContentMeta {
	meta := model.EmptyContentMeta()

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return meta
	}

	meta.FormCount = doc.Find("form").Length()

	doc.Find("input").Each(func(_ int, s *goquery.Selection) {
		if strings.EqualFold(strings.TrimSpace(s.AttrOr("type", "")), "password") {
			meta.HasPasswordField = true
		}
		name := strings.ToLower(s.AttrOr("name", ""))
		for _, fragment := range sensitiveFieldFragments {
			if strings.Contains(name, fragment) {
				meta.SensitiveForm = true
				break
			}
		}
	})
	if meta.HasPasswordField {
		meta.SensitiveForm = true
	}

	text := visibleText(doc)
	for _, phrase := range loginPhrases {
		if strings.Contains(text, phrase) {
			meta.LoginLike = true
			break
		}
	}
	for _, kw := range a.keywords {
		if strings.Contains(text, kw) {
			meta.KeywordsFound = append(meta.KeywordsFound, kw)
		}
	}

	if actions := crossDomainActions(doc, baseURL); len(actions) > 0 {
		meta.CrossDomainFormActions = actions
	}
	if tricks := detectTricks(doc, htmlContent); len(tricks) > 0 {
		meta.Tricks = tricks
	}
	meta.MetaRefreshTarget = metaRefresh(doc, baseURL)

	return meta
}

// DetectMetaRefresh returns the absolute target of the meta refresh carrying
// a url= fragment, or "" when there is none. The last such tag wins.
func DetectMetaRefresh(htmlContent, baseURL string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}
	return metaRefresh(doc, baseURL)
}

func metaRefresh(doc *goquery.Document, baseURL string) string {
	var target string
	doc.Find("meta[http-equiv]").Each(func(_ int, s *goquery.Selection) {
		if !strings.Contains(strings.ToLower(s.AttrOr("http-equiv", "")), "refresh") {
			return
		}
		m := refreshURLPattern.FindStringSubmatch(s.AttrOr("content", ""))
		if m == nil {
			return
		}
		loc := strings.Trim(strings.TrimSpace(m[1]), `'"`)
		if resolved := resolveURL(baseURL, loc); resolved != "" {
			target = resolved
		}
	})
	return target
}

// visibleText returns lowercased body text without script and style content
func visibleText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, noscript, template").Remove()
	return strings.ToLower(body.Text())
}

func crossDomainActions(doc *goquery.Document, baseURL string) []string {
	pageDomain := domain.Registrable(baseURL)

	var actions []string
	doc.Find("form[action]").Each(func(_ int, s *goquery.Selection) {
		action := strings.TrimSpace(s.AttrOr("action", ""))
		if action == "" {
			return
		}
		abs := resolveURL(baseURL, action)
		if abs == "" {
			return
		}
		if d := domain.Registrable(abs); d != "" && d != pageDomain {
			actions = append(actions, abs)
		}
	})
	return actions
}

func detectTricks(doc *goquery.Document, raw string) []string {
	var tricks []string
	if doc.Find("[oncontextmenu]").Length() > 0 || strings.Contains(strings.ToLower(raw), "oncontextmenu") {
		tricks = append(tricks, TrickRightClickBlocked)
	}
	if timerPattern.MatchString(raw) {
		tricks = append(tricks, TrickTimerScheduling)
	}
	return tricks
}

// resolveURL resolves href against base, keeping only http(s) results
func resolveURL(base, href string) string {
	if strings.HasPrefix(strings.ToLower(href), "javascript:") || strings.HasPrefix(strings.ToLower(href), "mailto:") {
		return ""
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := baseURL.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
