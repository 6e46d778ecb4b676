// Package cookies assesses Netscape cookie-jar files used for authenticated
// extraction: parsing, expiry classification, an optional live probe and the
// startup step that writes inline cookie content to disk.
package cookies
