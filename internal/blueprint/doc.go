// Package blueprint models a single Blueprint record and builds new ones from
// extracted submission fields.
//
// A Blueprint is an open JSON object: the fields the pipeline reads are typed,
// and every other key is carried through Extra so that records written by
// newer TitleCardMaker versions survive a rebuild byte for byte.
package blueprint
