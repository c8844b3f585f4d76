package pipeline

import "errors"

var (
	// ErrEnricherRequired is returned when an enricher is not provided.
	ErrEnricherRequired = errors.New("enricher required")

	// ErrClassifierRequired is returned when a classifier is not provided.
	ErrClassifierRequired = errors.New("classifier required")

	// ErrWriterRequired is returned when a note writer is not provided.
	ErrWriterRequired = errors.New("note writer required")

	// ErrPipelineClosed is returned for items submitted after Release.
	ErrPipelineClosed = errors.New("pipeline is closed")

	// errDeferralExceeded marks a rate-limit wait that ran out of budget;
	// the item proceeds without enrichment.
	errDeferralExceeded = errors.New("rate limit deferral budget exceeded")

	// errTextTooLong marks content over the processable bound; the item
	// proceeds without enrichment and no AI budget is spent.
	errTextTooLong = errors.New("text too long for enrichment")
)
