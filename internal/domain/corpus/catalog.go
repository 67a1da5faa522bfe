package corpus

import (
	"fmt"
	"sort"
	"strings"
)

// Genre constants for the curated corpus
const (
	GenreLitteratureGenerale = "litterature_generale"
	GenreThrillerPolicier    = "thriller_policier"
	GenreFantasySF           = "fantasy_sf"
)

// GutenbergBaseURL is the root of the Project Gutenberg mirror used for
// plain-text downloads.
const GutenbergBaseURL = "https://www.gutenberg.org"

// CuratedBooks maps a stable book key to its Project Gutenberg id.
// The keys double as filenames and as genre lookups via prefix.
var CuratedBooks = map[string]int{
	"hugo_miserables_t1":        17489,
	"hugo_miserables_t2":        17493,
	"hugo_notre_dame":           2610,
	"flaubert_bovary":           14155,
	"flaubert_education":        14156,
	"stendhal_rouge_noir":       798,
	"zola_germinal":             5711,
	"zola_assommoir":            8600,
	"zola_nana":                 5765,
	"zola_bete_humaine":         14553,
	"balzac_pere_goriot":        5090,
	"balzac_illusions":          13159,
	"dumas_monte_cristo_t1":     17989,
	"dumas_monte_cristo_t2":     17990,
	"dumas_trois_mousquetaires": 13951,
	"maupassant_bel_ami":        3790,
	"maupassant_contes":         3090,
	"proust_swann":              7178,
	"voltaire_candide":          4650,

	"leroux_fantome_opera":  175,
	"leroux_chambre_jaune":  13071,
	"leroux_parfum_dame":    13072,
	"leblanc_arsene_lupin":  6133,
	"leblanc_aiguille":      12389,
	"leblanc_813":           28371,

	"verne_20000_lieues":     5097,
	"verne_tour_monde":       800,
	"verne_voyage_centre":    4791,
	"verne_ile_mysterieuse":  9080,
	"verne_5_semaines":       4548,
	"verne_terre_lune":       799,
	"maupassant_horla":       14063,
}

// genrePrefixes maps key prefixes to genres. Longer prefixes win so that
// e.g. maupassant_horla resolves to fantasy_sf while maupassant_bel stays
// general literature.
var genrePrefixes = map[string]string{
	"hugo":             GenreLitteratureGenerale,
	"flaubert":         GenreLitteratureGenerale,
	"stendhal":         GenreLitteratureGenerale,
	"zola":             GenreLitteratureGenerale,
	"balzac":           GenreLitteratureGenerale,
	"dumas":            GenreLitteratureGenerale,
	"maupassant_bel":   GenreLitteratureGenerale,
	"maupassant_contes": GenreLitteratureGenerale,
	"proust":           GenreLitteratureGenerale,
	"voltaire":         GenreLitteratureGenerale,
	"leroux":           GenreThrillerPolicier,
	"leblanc":          GenreThrillerPolicier,
	"verne":            GenreFantasySF,
	"maupassant_horla": GenreFantasySF,
}

// GenreOf resolves the genre for a book key by longest matching prefix.
// Unknown keys default to general literature.
func GenreOf(bookKey string) string {
	bestLen := 0
	genre := GenreLitteratureGenerale
	for prefix, g := range genrePrefixes {
		if strings.HasPrefix(bookKey, prefix) && len(prefix) > bestLen {
			bestLen = len(prefix)
			genre = g
		}
	}
	return genre
}

// BookURL builds the Gutenberg plain-text URL for a book id.
func BookURL(bookID int) string {
	return BookURLAt(GutenbergBaseURL, bookID)
}

// BookURLAt builds the plain-text URL for a book id on the given mirror.
func BookURLAt(baseURL string, bookID int) string {
	return fmt.Sprintf("%s/cache/epub/%d/pg%d.txt", baseURL, bookID, bookID)
}

// SortedBookKeys returns the curated book keys in deterministic order.
func SortedBookKeys() []string {
	keys := make([]string, 0, len(CuratedBooks))
	for key := range CuratedBooks {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// BookMeta stores the outcome of one curated book download.
type BookMeta struct {
	BookID   int    `json:"book_id"`
	Key      string `json:"key"`
	Genre    string `json:"genre"`
	FilePath string `json:"file_path"`
	FileSize int64  `json:"file_size"`
	Success  bool   `json:"download_success"`
	Error    string `json:"error,omitempty"`
}
