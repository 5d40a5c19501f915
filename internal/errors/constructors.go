package errors

// Convenience functions for common error patterns

// Config errors

func ConfigNotFound(path string, cause error) *DriverError {
	return Wrap(cause, CategoryConfig, SeverityFatal, "configuration file not found").
		WithContext("path", path)
}

func ValidationFailed(field, reason string) *DriverError {
	return New(CategoryValidation, SeverityFatal, "validation failed").
		WithContext("field", field).
		WithContext("reason", reason)
}

// Tool errors

func GitNotFound(cause error) *DriverError {
	return Wrap(cause, CategoryGit, SeverityFatal, "git executable not found on this host")
}

func GitVersionUndetermined() *DriverError {
	return New(CategoryGit, SeverityFatal, "unable to determine git version")
}

func GitVersionTooOld(detected, minimum string) *DriverError {
	return New(CategoryGit, SeverityFatal, "installed git is older than the minimum supported version").
		WithContext("detected", detected).
		WithContext("minimum", minimum)
}

func ProcessStartFailed(executable string, cause error) *DriverError {
	return Wrap(cause, CategoryProcess, SeverityFatal, "failed to start subprocess").
		WithContext("executable", executable)
}

// Journal / infrastructure errors

func JournalError(operation string, cause error) *DriverError {
	return Wrap(cause, CategoryInternal, SeverityError, "operation journal failure").
		WithContext("operation", operation)
}
