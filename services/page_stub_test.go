package services

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// stubElement is one addressable node on a scripted page.
type stubElement struct {
	visible bool
	attrs   map[string]string
	text    string
	html    string
}

// stubPage scripts just enough of playwright.Page for pipeline tests.
// Elements are looked up by the exact selector string production code builds,
// so a test registering the wrong selector fails the same way a real page
// without the element would.
type stubPage struct {
	playwright.Page

	elements map[string]*stubElement
	lists    map[string][]string
	filled   map[string]string
	clicked  []string

	evaluations int
	evalResult  interface{}

	screenshot    []byte
	screenshotErr error

	gotoErr error
	title   string
	content string
	url     string
}

func newStubPage() *stubPage {
	return &stubPage{
		elements: make(map[string]*stubElement),
		lists:    make(map[string][]string),
		filled:   make(map[string]string),
	}
}

func (p *stubPage) Locator(selector string, options ...playwright.PageLocatorOptions) playwright.Locator {
	return &stubLocator{page: p, selector: selector}
}

func (p *stubPage) Screenshot(options ...playwright.PageScreenshotOptions) ([]byte, error) {
	return p.screenshot, p.screenshotErr
}

func (p *stubPage) Evaluate(expression string, arg ...interface{}) (interface{}, error) {
	p.evaluations++
	return p.evalResult, nil
}

func (p *stubPage) Title() (string, error)   { return p.title, nil }
func (p *stubPage) Content() (string, error) { return p.content, nil }
func (p *stubPage) URL() string              { return p.url }

func (p *stubPage) Goto(url string, options ...playwright.PageGotoOptions) (playwright.Response, error) {
	if p.gotoErr != nil {
		return nil, p.gotoErr
	}
	return nil, nil
}

// embeddedLocator lets stubLocator embed playwright.Locator without the
// embedded field name colliding with its own Locator method.
type embeddedLocator = playwright.Locator

// stubLocator resolves against its page's element map. Option locators built
// by All carry their text directly.
type stubLocator struct {
	embeddedLocator

	page     *stubPage
	selector string
	text     string
}

func (l *stubLocator) First() playwright.Locator { return l }
func (l *stubLocator) Last() playwright.Locator  { return l }

func (l *stubLocator) Count() (int, error) {
	if _, ok := l.page.elements[l.selector]; ok {
		return 1, nil
	}
	if options, ok := l.page.lists[l.selector]; ok {
		return len(options), nil
	}
	return 0, nil
}

func (l *stubLocator) IsVisible(options ...playwright.LocatorIsVisibleOptions) (bool, error) {
	element, ok := l.page.elements[l.selector]
	return ok && element.visible, nil
}

func (l *stubLocator) GetAttribute(name string, options ...playwright.LocatorGetAttributeOptions) (string, error) {
	if element, ok := l.page.elements[l.selector]; ok {
		return element.attrs[name], nil
	}
	return "", nil
}

func (l *stubLocator) TextContent(options ...playwright.LocatorTextContentOptions) (string, error) {
	if l.text != "" {
		return l.text, nil
	}
	if element, ok := l.page.elements[l.selector]; ok {
		return element.text, nil
	}
	return "", nil
}

func (l *stubLocator) InnerHTML(options ...playwright.LocatorInnerHTMLOptions) (string, error) {
	if element, ok := l.page.elements[l.selector]; ok {
		return element.html, nil
	}
	return "", fmt.Errorf("no element matches %q", l.selector)
}

func (l *stubLocator) Fill(value string, options ...playwright.LocatorFillOptions) error {
	if _, ok := l.page.elements[l.selector]; !ok {
		return fmt.Errorf("no element matches %q", l.selector)
	}
	l.page.filled[l.selector] = value
	return nil
}

func (l *stubLocator) Click(options ...playwright.LocatorClickOptions) error {
	if l.text != "" {
		l.page.clicked = append(l.page.clicked, l.text)
		return nil
	}
	if _, ok := l.page.elements[l.selector]; !ok {
		return fmt.Errorf("no element matches %q", l.selector)
	}
	l.page.clicked = append(l.page.clicked, l.selector)
	return nil
}

func (l *stubLocator) Locator(selectorOrLocator interface{}, options ...playwright.LocatorLocatorOptions) playwright.Locator {
	return &stubLocator{page: l.page, selector: l.selector + " " + selectorOrLocator.(string)}
}

func (l *stubLocator) All() ([]playwright.Locator, error) {
	texts, ok := l.page.lists[l.selector]
	if !ok {
		return nil, nil
	}
	locators := make([]playwright.Locator, len(texts))
	for i, text := range texts {
		locators[i] = &stubLocator{page: l.page, selector: l.selector, text: text}
	}
	return locators, nil
}

// stubBrowser hands back the same scripted page for every context.
type stubBrowser struct {
	playwright.Browser
	page *stubPage
}

func (b *stubBrowser) NewContext(options ...playwright.BrowserNewContextOptions) (playwright.BrowserContext, error) {
	return &stubBrowserContext{page: b.page}, nil
}

type stubBrowserContext struct {
	playwright.BrowserContext
	page *stubPage
}

func (c *stubBrowserContext) NewPage() (playwright.Page, error) { return c.page, nil }

func (c *stubBrowserContext) Close(options ...playwright.BrowserContextCloseOptions) error {
	return nil
}
