// Package govuk scrapes the data.gov.uk portal for Find a Tender monthly
// notice archives: the search page that lists the month's dataset, and
// the dataset page whose table links the downloadable ZIPs.
package govuk
