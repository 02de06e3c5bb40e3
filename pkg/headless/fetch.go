package headless

import (
	"context"
	"fmt"
	"time"

	"github.com/DataHenHQ/useragent"
	"github.com/chromedp/chromedp"
)

// Default settings for headless browser operation.
const (
	DefaultTimeout    = 45 * time.Second
	DefaultWaitBuffer = 2 * time.Second
)

// WaitStrategy performs the navigation and whatever waiting is needed to
// know that a dynamic page has finished rendering its content.
type WaitStrategy func(ctx context.Context, url string) error

// WaitForSelector returns a WaitStrategy that navigates to the URL and waits
// until the given selector is visible. Good enough for catalog listings
// where the product cards render in one batch.
func WaitForSelector(selector string) WaitStrategy {
	return func(ctx context.Context, url string) error {
		err := chromedp.Run(ctx,
			chromedp.Navigate(url),
			chromedp.Evaluate(`Object.defineProperty(navigator, 'webdriver', {get: () => false, configurable: true});`, nil),
			chromedp.WaitVisible(selector, chromedp.ByQuery),
		)
		if err != nil {
			return fmt.Errorf("waiting for '%s' on %s: %w", selector, url, err)
		}
		return nil
	}
}

// FetchRenderedContent navigates to a URL in a headless browser, runs the
// provided WaitStrategy, and returns the outer HTML of extractionSelector.
func FetchRenderedContent(parentCtx context.Context, url string, strategy WaitStrategy, extractionSelector string) (string, error) {
	ua, err := useragent.Desktop()
	if err != nil {
		return "", fmt.Errorf("could not generate random UA: %w", err)
	}

	ctx, cancel := context.WithTimeout(parentCtx, DefaultTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(ua),
		chromedp.Headless,
		chromedp.WindowSize(1920, 1080),

		// Core Evasion Flags
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),

		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("no-first-run", true),

		// CRITICAL for local/Docker environments:
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("no-zygote", true),
		chromedp.Flag("single-process", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	chromeCtx, chromeCancel := chromedp.NewContext(allocCtx)
	defer chromeCancel()

	if err := strategy(chromeCtx, url); err != nil {
		return "", fmt.Errorf("wait strategy failed for %s: %w", url, err)
	}

	var fullHTML string
	tasks := chromedp.Tasks{
		// Small buffer after the custom wait passes, to let stragglers render.
		chromedp.Sleep(DefaultWaitBuffer),
		chromedp.OuterHTML(extractionSelector, &fullHTML, chromedp.ByQuery),
	}

	if err := chromedp.Run(chromeCtx, tasks); err != nil {
		return "", fmt.Errorf("failed to extract HTML from selector '%s': %w", extractionSelector, err)
	}

	return fullHTML, nil
}
