// Package issue turns a Blueprint submission into a flat field record.
//
// Submissions arrive from the issue tracker either as the markdown body
// produced by the fixed issue form, as the raw issue event object, or as a
// pre-structured record that skips text extraction. The markdown grammar is
// kept as data (Template): an ordered list of headings with a capture policy
// each. The whole body is matched by one anchored pattern compiled from the
// grammar; when it does not match, the first section whose prefix no longer
// matches is reported in a *SectionError.
package issue
