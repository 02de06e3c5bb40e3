package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://www.shoptok.si"

const fullCardPage = `
<html><body><div class="catalog">
  <div class="product-item" data-oid="555001">
    <div class="image-box"><a href="/lg-oled55"><img src="/img/lg-oled55.jpg"></a></div>
    <div class="cta-box">
      <h3>LG   OLED55B42LA
          (20934717)</h3>
      <div class="price"><b>€1.499,00</b></div>
      <a href="/lg-oled55b42la/cena">Primerjaj cene</a>
    </div>
    <div class="shop-count">v 12 trgovinah</div>
  </div>
</div></body></html>`

func newTestParser() *PageParser {
	return NewPageParser(testBaseURL, ShoptokSelectors())
}

func TestParsePageExtractsAllFields(t *testing.T) {
	result, err := newTestParser().ParsePage(fullCardPage, "Televizorji", "")
	require.NoError(t, err)
	require.Len(t, result.Products, 1)

	product := result.Products[0]
	assert.Equal(t, "LG OLED55B42LA (20934717)", product.Title)
	assert.Equal(t, "LG", product.Brand)
	assert.Equal(t, "v 12 trgovinah", product.Shop)
	assert.Equal(t, "https://www.shoptok.si/lg-oled55b42la/cena", product.ProductURL)
	assert.Equal(t, "https://www.shoptok.si/img/lg-oled55.jpg", product.ImageURL)
	assert.Equal(t, "Televizorji", product.Category)
	assert.Equal(t, "20934717", product.ExternalID)

	require.NotNil(t, product.Price)
	assert.Equal(t, int64(149900), product.Price.AmountInCents())
	assert.Equal(t, "EUR", product.Price.Currency())
}

func TestParsePageTitleFallsBackToCardText(t *testing.T) {
	page := `
	<div class="product-item">
	  <span>Samsung   QE55Q60D</span>
	</div>`

	result, err := newTestParser().ParsePage(page, "Televizorji", "")
	require.NoError(t, err)
	require.Len(t, result.Products, 1)

	assert.Equal(t, "Samsung QE55Q60D", result.Products[0].Title)
	assert.Equal(t, "Samsung", result.Products[0].Brand)
}

func TestParsePageMissingLinkUsesBaseURL(t *testing.T) {
	page := `
	<div class="product-item">
	  <div class="cta-box"><h3>Philips 55PUS8309</h3></div>
	</div>`

	result, err := newTestParser().ParsePage(page, "Televizorji", "")
	require.NoError(t, err)
	require.Len(t, result.Products, 1)

	product := result.Products[0]
	assert.Equal(t, testBaseURL, product.ProductURL)
	assert.Empty(t, product.ImageURL)
	assert.Empty(t, product.Shop)
	assert.Nil(t, product.Price)
}

func TestParsePageAbsoluteURLsPassThrough(t *testing.T) {
	page := `
	<div class="product-item">
	  <div class="image-box"><img src="https://cdn.example.com/tv.jpg"></div>
	  <div class="cta-box">
	    <h3>Sony Bravia</h3>
	    <a href="https://www.shoptok.si/sony-bravia/cena">cene</a>
	  </div>
	</div>`

	result, err := newTestParser().ParsePage(page, "Televizorji", "")
	require.NoError(t, err)
	require.Len(t, result.Products, 1)

	assert.Equal(t, "https://www.shoptok.si/sony-bravia/cena", result.Products[0].ProductURL)
	assert.Equal(t, "https://cdn.example.com/tv.jpg", result.Products[0].ImageURL)
}

func TestParsePageUnparsablePriceKeepsCard(t *testing.T) {
	page := `
	<div class="product-item">
	  <div class="cta-box">
	    <h3>Hisense 55E7KQ</h3>
	    <div class="price"><b>cena ni na voljo</b></div>
	  </div>
	</div>`

	result, err := newTestParser().ParsePage(page, "Televizorji", "")
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Nil(t, result.Products[0].Price)
	assert.Empty(t, result.Skipped)
}

func TestParsePageExternalIDFromTrackingAttribute(t *testing.T) {
	page := `
	<div class="product-item" data-oid="998877">
	  <div class="cta-box"><h3>Grundig 55 GHU 7970</h3></div>
	</div>`

	result, err := newTestParser().ParsePage(page, "Televizorji", "")
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "998877", result.Products[0].ExternalID)
}

func TestParsePageExternalIDTitleTokenWinsOverAttribute(t *testing.T) {
	page := `
	<div class="product-item" data-oid="998877">
	  <div class="cta-box"><h3>Grundig 55 GHU (1234567)</h3></div>
	</div>`

	result, err := newTestParser().ParsePage(page, "Televizorji", "")
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Equal(t, "1234567", result.Products[0].ExternalID)
}

func TestParsePageShortParenthesizedTokenIgnored(t *testing.T) {
	page := `
	<div class="product-item">
	  <div class="cta-box"><h3>TCL 55C655 (4K)</h3></div>
	</div>`

	result, err := newTestParser().ParsePage(page, "Televizorji", "")
	require.NoError(t, err)
	require.Len(t, result.Products, 1)
	assert.Empty(t, result.Products[0].ExternalID)
}

func TestParsePageSkipsMalformedCards(t *testing.T) {
	page := `
	<div class="catalog">
	  <div class="product-item"><div class="cta-box"><h3>LG OLED48</h3></div></div>
	  <div class="product-item"><img src="/only-an-image.jpg"></div>
	  <div class="product-item"><div class="cta-box"><h3>Samsung QLED</h3></div></div>
	</div>`

	result, err := newTestParser().ParsePage(page, "Televizorji", "")
	require.NoError(t, err)
	assert.Len(t, result.Products, 2)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 1, result.Skipped[0].Index)
	assert.Contains(t, result.Skipped[0].Reason, "no text content")
}

func TestParsePageFallbackCardSelector(t *testing.T) {
	page := `
	<div class="listing">
	  <article data-oid="111222"><h4>LG OLED42C44LA</h4></article>
	  <article data-oid="333444"><h4>Sony KD-50X75WL</h4></article>
	</div>`

	result, err := newTestParser().ParsePage(page, "Televizorji", "")
	require.NoError(t, err)
	require.Len(t, result.Products, 2)
	assert.Equal(t, "LG OLED42C44LA", result.Products[0].Title)
	assert.Equal(t, "111222", result.Products[0].ExternalID)
}

func TestBrandFromTitle(t *testing.T) {
	testCases := []struct {
		title    string
		expected string
	}{
		{title: "LG OLED55B42LA", expected: "LG"},
		{title: "Samsung", expected: "Samsung"},
		{title: "X 55 inch TV", expected: ""},
		{title: "", expected: ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, brandFromTitle(tc.title), "title: %q", tc.title)
	}
}
