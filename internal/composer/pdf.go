package composer

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// A4 in inches, as PrintToPDF wants it.
const (
	a4Width  = 8.27
	a4Height = 11.69
)

// PDF loads url in headless Chrome and prints it at A4 with backgrounds, the
// same sheets the HTML view shows.
func PDF(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()
	bctx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()
	bctx, timeoutCancel := context.WithTimeout(bctx, timeout)
	defer timeoutCancel()

	var out []byte
	err := chromedp.Run(bctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("section.sheet", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(a4Width).
				WithPaperHeight(a4Height).
				WithMarginTop(0).WithMarginBottom(0).WithMarginLeft(0).WithMarginRight(0).
				WithPreferCSSPageSize(true).
				Do(ctx)
			if err != nil {
				return err
			}
			out = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print pdf: %w", err)
	}
	return out, nil
}
