package filtering

import (
	"context"

	"github.com/PhoenixMystique/alice-jobseeker/internal/listing"
)

type companiesFilter struct {
	companies []string
}

// NewExcludedCompanies creates a filter that removes listings from
// companies the user never wants to apply to.
func NewExcludedCompanies(companies []string) Filter {
	return &companiesFilter{
		companies: companies,
	}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Disable(string) {}

func (f *companiesFilter) IsEnabled() bool { return true }

func (f *companiesFilter) Validate() error { return nil }

func (f *companiesFilter) Apply(_ context.Context, jobs *listing.Listings) (*listing.Listings, Step, error) {
	initial := jobs.Len()
	if len(f.companies) == 0 {
		return jobs, Step{Initial: initial, Dropped: 0, Left: jobs.Len()}, nil
	}

	excluded := jobs.Exclude(listing.CompanyField, f.companies)

	return jobs, Step{Initial: initial, Dropped: len(excluded), Left: jobs.Len()}, nil
}
