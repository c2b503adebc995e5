package assets

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// InjectCSP adds a Content-Security-Policy meta tag as the first element
// of the document head. An existing policy meta tag is replaced.
func InjectCSP(document []byte, csp string) ([]byte, error) {
	if csp == "" {
		return document, nil
	}
	doc, err := html.Parse(bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	head := findElement(doc, atom.Head)
	if head == nil {
		return nil, fmt.Errorf("html document has no head")
	}
	for c := head.FirstChild; c != nil; {
		next := c.NextSibling
		if isCSPMeta(c) {
			head.RemoveChild(c)
		}
		c = next
	}

	meta := &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Meta,
		Data:     "meta",
		Attr: []html.Attribute{
			{Key: "http-equiv", Val: "Content-Security-Policy"},
			{Key: "content", Val: csp},
		},
	}
	head.InsertBefore(meta, head.FirstChild)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// InjectScript adds an inline script as the first element of the head so
// it runs before any page script. When nonce is set the script carries it
// and every policy meta tag in the document is widened with AdmitScript.
func InjectScript(document []byte, script, nonce string) ([]byte, error) {
	doc, err := html.Parse(bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	head := findElement(doc, atom.Head)
	if head == nil {
		return nil, fmt.Errorf("html document has no head")
	}
	node := &html.Node{Type: html.ElementNode, DataAtom: atom.Script, Data: "script"}
	if nonce != "" {
		node.Attr = append(node.Attr, html.Attribute{Key: "nonce", Val: nonce})
	}
	node.AppendChild(&html.Node{Type: html.TextNode, Data: script})

	// Keep the CSP meta tag first so it applies to the injected script.
	anchor := head.FirstChild
	for anchor != nil && isCSPMeta(anchor) {
		if nonce != "" {
			for i, a := range anchor.Attr {
				if strings.EqualFold(a.Key, "content") {
					anchor.Attr[i].Val = AdmitScript(a.Val, nonce)
				}
			}
		}
		anchor = anchor.NextSibling
	}
	head.InsertBefore(node, anchor)

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("render html: %w", err)
	}
	return buf.Bytes(), nil
}

// AdmitScript widens policy so that an inline script carrying nonce runs
// and may evaluate further script text. Only the script directives change.
// A policy that restricts nothing about scripts is returned as is.
func AdmitScript(policy, nonce string) string {
	var (
		directives []string
		fallback   []string
		scriptSrc  bool
	)
	for _, d := range strings.Split(policy, ";") {
		fields := strings.Fields(d)
		if len(fields) == 0 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "script-src":
			scriptSrc = true
			fields = admit(fields, nonce, true)
		case "script-src-elem":
			fields = admit(fields, nonce, false)
		case "default-src":
			fallback = fields[1:]
		}
		directives = append(directives, strings.Join(fields, " "))
	}
	if !scriptSrc && fallback != nil {
		fields := append([]string{"script-src"}, fallback...)
		directives = append(directives, strings.Join(admit(fields, nonce, true), " "))
	}
	return strings.Join(directives, "; ")
}

// admit adds the nonce (and 'unsafe-eval' when eval is set) to a directive.
// A directive that already allows any inline script gets no nonce, since a
// nonce would switch 'unsafe-inline' off for the page's own scripts.
func admit(fields []string, nonce string, eval bool) []string {
	out := []string{fields[0]}
	inline, keyed, hasEval := false, false, false
	for _, f := range fields[1:] {
		lf := strings.ToLower(f)
		switch {
		case lf == "'none'":
			continue
		case lf == "'unsafe-inline'":
			inline = true
		case lf == "'unsafe-eval'":
			hasEval = true
		case strings.HasPrefix(lf, "'nonce-"), strings.HasPrefix(lf, "'sha"):
			keyed = true
		}
		out = append(out, f)
	}
	if !inline || keyed {
		out = append(out, "'nonce-"+nonce+"'")
	}
	if eval && !hasEval {
		out = append(out, "'unsafe-eval'")
	}
	return out
}

func isCSPMeta(n *html.Node) bool {
	if n.Type != html.ElementNode || n.DataAtom != atom.Meta {
		return false
	}
	for _, a := range n.Attr {
		if a.Key == "http-equiv" && bytes.EqualFold([]byte(a.Val), []byte("Content-Security-Policy")) {
			return true
		}
	}
	return false
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}
