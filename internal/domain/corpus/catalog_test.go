//go:build unit
// +build unit

package corpus

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenreOf(t *testing.T) {
	tests := []struct {
		bookKey string
		want    string
	}{
		{"hugo_miserables_t1", GenreLitteratureGenerale},
		{"zola_germinal", GenreLitteratureGenerale},
		{"leroux_fantome_opera", GenreThrillerPolicier},
		{"leblanc_arsene_lupin", GenreThrillerPolicier},
		{"verne_20000_lieues", GenreFantasySF},
		// the longest prefix wins for authors spanning genres
		{"maupassant_horla", GenreFantasySF},
		{"maupassant_bel_ami", GenreLitteratureGenerale},
		{"maupassant_contes", GenreLitteratureGenerale},
		// unknown keys default to general literature
		{"camus_etranger", GenreLitteratureGenerale},
	}

	for _, test := range tests {
		t.Run(test.bookKey, func(t *testing.T) {
			assert.Equal(t, test.want, GenreOf(test.bookKey))
		})
	}
}

func TestBookURL(t *testing.T) {
	assert.Equal(t, "https://www.gutenberg.org/cache/epub/5711/pg5711.txt", BookURL(5711))
	assert.Equal(t, "http://127.0.0.1:8080/cache/epub/175/pg175.txt", BookURLAt("http://127.0.0.1:8080", 175))
}

func TestSortedBookKeys(t *testing.T) {
	keys := SortedBookKeys()

	assert.Len(t, keys, len(CuratedBooks))
	assert.True(t, sort.StringsAreSorted(keys))

	for _, key := range keys {
		assert.Contains(t, CuratedBooks, key)
	}
}

func TestCuratedBooks_AllGenresCovered(t *testing.T) {
	seen := map[string]bool{}
	for key := range CuratedBooks {
		seen[GenreOf(key)] = true
	}

	assert.True(t, seen[GenreLitteratureGenerale])
	assert.True(t, seen[GenreThrillerPolicier])
	assert.True(t, seen[GenreFantasySF])
}
