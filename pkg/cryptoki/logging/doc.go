// Package logging provides a minimal logging facade for the cryptoki wrapper.
//
// The Logger interface wraps the subset of log/slog the wrapper uses, so
// applications can plug in their own implementation for testing, redaction
// or an existing logging system.
//
//	logger := logging.New(nil) // slog.Default()
//	logger.Info(ctx, "derive", "mechanism", mech.Type, logging.Redacted("info"))
//	// Logs: ... mechanism=CKM_HKDF_DERIVE info="[redacted]"
//
// # Security Considerations
//
//   - Never log key material, salt bytes or info strings
//   - Log lengths and handles instead; use Redacted to mark omitted values
//   - HKDFParams.String already omits buffer contents
package logging
