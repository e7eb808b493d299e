// Package bulletin extracts upper-division computer science courses without
// prerequisites from the University of Denver course bulletin.
//
// A course qualifies when its number is 3000 or higher and its description
// contains no link. The link test is a heuristic: the bulletin links every
// prerequisite course, but a description may also link something else.
package bulletin
