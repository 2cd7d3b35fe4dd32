// Package loaders turns an uploaded file into text documents.
//
// Each loader handles a set of file extensions. PDFs yield one document per
// page; the other formats yield a single document per file. The Registry
// picks a loader by the extension of the staged upload.
package loaders
