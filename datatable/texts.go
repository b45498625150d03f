package datatable

import "github.com/deltegui/bankconsole/localizer"

// Texts are the fixed strings of the table. Empty fields take the English
// default.
type Texts struct {
	Loading       string
	Error         string
	ErrorStatus   string
	Empty         string
	Show          string
	PerPage       string
	Summary       string
	MobilePage    string
	MobileResults string
	Previous      string
	Next          string
}

func DefaultTexts() Texts {
	return Texts{
		Loading:       "Loading data...",
		Error:         "Error loading data. Please try again.",
		ErrorStatus:   " (Status: %s)",
		Empty:         "No data found.",
		Show:          "Show:",
		PerPage:       "per page",
		Summary:       "Showing %d to %d of %d results",
		MobilePage:    "Page %d of %d",
		MobileResults: "(%d results)",
		Previous:      "Previous",
		Next:          "Next",
	}
}

func (t Texts) withDefaults() Texts {
	d := DefaultTexts()
	fill := func(dst *string, def string) {
		if *dst == "" {
			*dst = def
		}
	}
	fill(&t.Loading, d.Loading)
	fill(&t.Error, d.Error)
	fill(&t.ErrorStatus, d.ErrorStatus)
	fill(&t.Empty, d.Empty)
	fill(&t.Show, d.Show)
	fill(&t.PerPage, d.PerPage)
	fill(&t.Summary, d.Summary)
	fill(&t.MobilePage, d.MobilePage)
	fill(&t.MobileResults, d.MobileResults)
	fill(&t.Previous, d.Previous)
	fill(&t.Next, d.Next)
	return t
}

// Localized reads the table strings from loc. Missing keys keep the
// defaults.
func Localized(loc localizer.Localizer) Texts {
	return Texts{
		Loading:       loc["DataTableLoading"],
		Error:         loc["DataTableError"],
		ErrorStatus:   loc["DataTableErrorStatus"],
		Empty:         loc["DataTableEmpty"],
		Show:          loc["DataTableShow"],
		PerPage:       loc["DataTablePerPage"],
		Summary:       loc["PaginationMessageOfElements"],
		MobilePage:    loc["PaginationMobilePage"],
		MobileResults: loc["PaginationMobileResults"],
		Previous:      loc["PaginationPreviousButton"],
		Next:          loc["PaginationNextButton"],
	}.withDefaults()
}
