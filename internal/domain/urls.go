package domain

import (
	"fmt"
	"net/url"
)

// DocumentURL is the public path of a document's latest version
func DocumentURL(documentID string) string {
	return "/legal/" + url.PathEscape(documentID)
}

// VersionURL is the public path of one version of a document
func VersionURL(documentID string, version int64) string {
	return fmt.Sprintf("%s/v/%d", DocumentURL(documentID), version)
}

// AcceptURL is the confirmation path of a version, with next appended when not empty
func AcceptURL(documentID string, version int64, next string) string {
	u := VersionURL(documentID, version) + "/accept"
	if next != "" {
		u += "?" + url.Values{"next": {next}}.Encode()
	}
	return u
}
