package enrich

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	"mcpnvidia/search"
)

// document holds everything the extraction rules read from one page.
type document struct {
	url  *url.URL
	dom  *goquery.Document
	text string

	// extractor-reported fields, empty when the extractor failed
	extractedAuthor string
	extractedDate   time.Time
	byline          string
}

func parseDocument(body []byte, pageURL *url.URL) (*document, []error) {
	var errs []error
	d := &document{url: pageURL}

	dom, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		errs = append(errs, &search.ExtractionError{Step: "dom", Err: err})
		dom = goquery.NewDocumentFromNode(&html.Node{Type: html.DocumentNode})
	}
	d.dom = dom

	if err := safely(func() error { return d.extractWithTrafilatura(body) }); err != nil {
		errs = append(errs, &search.ExtractionError{Step: "trafilatura", Err: err})
	}
	if strings.TrimSpace(d.text) == "" {
		if err := safely(func() error { return d.extractWithReadability(body) }); err != nil {
			errs = append(errs, &search.ExtractionError{Step: "readability", Err: err})
		}
	}
	if strings.TrimSpace(d.text) == "" {
		d.text = bodyText(d.dom)
	}
	d.text = collapseSpace(d.text)

	return d, errs
}

func (d *document) extractWithTrafilatura(body []byte) error {
	result, err := trafilatura.Extract(bytes.NewReader(body), trafilatura.Options{OriginalURL: d.url})
	if err != nil {
		return err
	}
	d.text = result.ContentText
	d.extractedAuthor = result.Metadata.Author
	d.extractedDate = result.Metadata.Date
	return nil
}

func (d *document) extractWithReadability(body []byte) error {
	parser := readability.NewParser()
	article, err := parser.Parse(bytes.NewReader(body), d.url)
	if err != nil {
		return err
	}
	d.text = article.TextContent
	d.byline = article.Byline
	return nil
}

// bodyText is the last resort: visible text of the whole body.
func bodyText(dom *goquery.Document) string {
	body := dom.Find("body").Clone()
	body.Find("script, style, noscript, nav, header, footer, template").Remove()
	return body.Text()
}

func (d *document) meta(keys ...string) string {
	for _, key := range keys {
		sel := fmt.Sprintf(`meta[property=%q], meta[name=%q], meta[itemprop=%q]`, key, key, key)
		if v, ok := d.dom.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func (d *document) title() string {
	if t := d.meta("og:title"); t != "" {
		return t
	}
	return strings.TrimSpace(d.dom.Find("title").First().Text())
}

func (d *document) headings() string {
	var b strings.Builder
	d.dom.Find("h1, h2, h3").Each(func(_ int, s *goquery.Selection) {
		b.WriteString(strings.TrimSpace(s.Text()))
		b.WriteString("\n")
	})
	return b.String()
}

// safely runs a third-party extraction step, turning a panic into an error.
func safely(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
