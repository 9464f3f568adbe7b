package ledgerclient

// ValidateAccountChecksums checks every id in ids against ledger, returning
// the first mismatch as a CannotValidateChecksumError. An id with no
// checksum attached (Checksum == "") is always valid — checksums are an
// optional, client-side sanity check on ids parsed with one attached (§4.7:
// "the client validates each id carrying a checksum against its current
// ledger id before the pipeline begins; an id minted locally without one is
// never rejected").
func ValidateAccountChecksums(ledger LedgerId, ids ...AccountId) error {
	for _, id := range ids {
		if err := id.validateChecksum(ledger); err != nil {
			return err
		}
	}
	return nil
}
