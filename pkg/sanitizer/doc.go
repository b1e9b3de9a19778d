// Package sanitizer provides input normalization for guest and property data.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Functions handle invalid input gracefully, typically by returning
// empty strings rather than errors.
//
// Normalization includes:
//   - Phone numbers: Convert to E.164 format (+[country][number])
//   - Strings: Collapse whitespace, trim leading/trailing spaces
//   - Emails: Lowercase and trim
//   - File labels: Lowercase, replace non-alphanumerics with underscores
//     (used for backup archive names)
package sanitizer
