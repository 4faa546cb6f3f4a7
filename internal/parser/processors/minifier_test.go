package processors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"tnstc-api/internal/parser/processors"
)

func TestMinify(t *testing.T) {
	t.Parallel()

	m := processors.NewMinifier()

	t.Run("strips scripts and styles", func(t *testing.T) {
		t.Parallel()

		got := m.Minify(`<div class="bus-list"><script>alert(1)</script><style>.x{}</style>SALEM</div>`)
		assert.NotContains(t, got, "script")
		assert.NotContains(t, got, "style")
		assert.Contains(t, got, "SALEM")
	})

	t.Run("keeps id, class and data attributes only", func(t *testing.T) {
		t.Parallel()

		got := m.Minify(`<div class="bus-list" data-bus-type="AC 3X2" style="color:red" onclick="x()">SALEM</div>`)
		assert.Contains(t, got, `class="bus-list"`)
		assert.Contains(t, got, `data-bus-type="AC 3X2"`)
		assert.NotContains(t, got, "style=")
		assert.NotContains(t, got, "onclick=")
	})

	t.Run("keeps empty table cells", func(t *testing.T) {
		t.Parallel()

		got := m.Minify(`<table><tr><td></td><td>350</td></tr></table>`)
		assert.Contains(t, got, "<td></td>")
	})

	t.Run("drops empty non-structural elements", func(t *testing.T) {
		t.Parallel()

		got := m.Minify(`<div><span>  </span><b>275H</b></div>`)
		assert.NotContains(t, got, "<span>")
		assert.Contains(t, got, "275H")
	})

	t.Run("collapses whitespace between tags", func(t *testing.T) {
		t.Parallel()

		got := m.Minify("<div>\n  <b>22:15</b>\n  </div>")
		assert.Contains(t, got, "<div><b>22:15</b></div>")
	})
}
