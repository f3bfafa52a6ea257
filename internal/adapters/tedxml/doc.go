// Package tedxml parses Find a Tender notice XML into flat records.
//
// Two schema families share the feed: classic TED R2.0.9 forms (F01-F21,
// namespaced) and the newer UKx OCDS-style forms (UK1_2022 .. UK16_2023,
// unnamespaced). Parse dispatches on the form tags the catalog carries for
// the source, UKx first, TED as the fallback.
//
// Elements are matched by local name so the TED namespace and the two
// NUTS namespaces (2016/2021 editions) never need spelling out.
package tedxml
