package browser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"sjsage522/discountcrawler/helpers"
)

// StaticSession serves an already rendered HTML snapshot through goquery.
// Waits resolve immediately and clicks and scrolls do nothing.
type StaticSession struct {
	doc *goquery.Document
}

// NewStaticSession returns a session with an empty page
func NewStaticSession() *StaticSession {
	return &StaticSession{}
}

// Navigate loads an http(s) URL, a file:// URL or a filesystem path
func (s *StaticSession) Navigate(url string) error {
	body, err := helpers.OpenDocument(url)
	if err != nil {
		return err
	}
	return s.Load(body)
}

// Load replaces the page with the HTML read from r
func (s *StaticSession) Load(r io.Reader) error {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}
	s.doc = doc
	return nil
}

func (s *StaticSession) root() (*goquery.Selection, error) {
	if s.doc == nil {
		return nil, errors.New("browser: no page loaded")
	}
	return s.doc.Selection, nil
}

// WaitFor reports ErrTimeout at once when selector does not match
func (s *StaticSession) WaitFor(selector string, _ time.Duration) error {
	root, err := s.root()
	if err != nil {
		return err
	}
	return waitStatic(root, selector)
}

// Find returns the first match of selector
func (s *StaticSession) Find(selector string) (Element, error) {
	root, err := s.root()
	if err != nil {
		return nil, err
	}
	return findStatic(root, selector)
}

// FindAll returns all matches of selector
func (s *StaticSession) FindAll(selector string) ([]Element, error) {
	root, err := s.root()
	if err != nil {
		return nil, err
	}

	var elements []Element
	root.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		elements = append(elements, &staticElement{sel: sel})
	})
	return elements, nil
}

// ScrollToBottom does nothing on a snapshot
func (s *StaticSession) ScrollToBottom() error {
	return nil
}

// Screenshot writes the page source to path
func (s *StaticSession) Screenshot(path string) error {
	if s.doc == nil {
		return errors.New("browser: no page loaded")
	}
	source, err := goquery.OuterHtml(s.doc.Selection)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(source), 0644)
}

// Close releases the document
func (s *StaticSession) Close() error {
	s.doc = nil
	return nil
}

type staticElement struct {
	sel *goquery.Selection
}

func (e *staticElement) Text() (string, error) {
	return InnerText(e.sel), nil
}

func (e *staticElement) Attribute(name string) (string, bool, error) {
	value, ok := e.sel.Attr(name)
	return value, ok, nil
}

func (e *staticElement) Click() error {
	return nil
}

func (e *staticElement) WaitFor(selector string, _ time.Duration) error {
	return waitStatic(e.sel, selector)
}

func (e *staticElement) Find(selector string) (Element, error) {
	return findStatic(e.sel, selector)
}

func waitStatic(root *goquery.Selection, selector string) error {
	if root.Find(selector).Length() == 0 {
		return fmt.Errorf("%w: %s", ErrTimeout, selector)
	}
	return nil
}

func findStatic(root *goquery.Selection, selector string) (Element, error) {
	match := root.Find(selector).First()
	if match.Length() == 0 {
		return nil, ErrNotFound
	}
	return &staticElement{sel: match}, nil
}

// blockElements start and end a line in rendered text
var blockElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Dd: true, atom.Div: true, atom.Dl: true, atom.Dt: true,
	atom.Figcaption: true, atom.Figure: true, atom.Footer: true, atom.Form: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hr: true, atom.Li: true, atom.Main: true, atom.Nav: true,
	atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true, atom.Table: true,
	atom.Tr: true, atom.Ul: true,
}

// InnerText approximates the browser's innerText for sel: block elements
// and <br> break lines, whitespace runs collapse, script and style are skipped.
func InnerText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		renderText(&b, n)
	}

	lines := helpers.SplitLines(b.String())
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

func renderText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(collapseSpace(n.Data))
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style, atom.Noscript, atom.Template:
			return
		case atom.Br:
			b.WriteString("\n")
			return
		}
	case html.DocumentNode:
	default:
		return
	}

	block := blockElements[n.DataAtom]
	if block {
		b.WriteString("\n")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		renderText(b, c)
	}
	if block {
		b.WriteString("\n")
	}
}

// collapseSpace folds whitespace runs, source line breaks included, into one space
func collapseSpace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		if s == "" {
			return ""
		}
		return " "
	}

	out := strings.Join(fields, " ")
	if r, _ := utf8.DecodeRuneInString(s); unicode.IsSpace(r) {
		out = " " + out
	}
	if r, _ := utf8.DecodeLastRuneInString(s); unicode.IsSpace(r) {
		out += " "
	}
	return out
}
