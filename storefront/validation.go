package storefront

// RequireNonEmpty checks that a required input field is set.
func RequireNonEmpty(field, errMsg string) *CommandError {
	if field == "" {
		return NewInvalidArgument(errMsg)
	}
	return nil
}

// RequirePositive checks that a value is greater than zero.
func RequirePositive(value int, errMsg string) *CommandError {
	if value <= 0 {
		return NewInvalidArgument(errMsg)
	}
	return nil
}

// RequireAtLeast checks that value is not below minimum.
func RequireAtLeast(value, minimum int, errMsg string) *CommandError {
	if value < minimum {
		return NewFailedPrecondition(errMsg)
	}
	return nil
}

// RequireNotEmpty checks that a slice has at least one element.
func RequireNotEmpty[T any](items []T, errMsg string) *CommandError {
	if len(items) == 0 {
		return NewFailedPrecondition(errMsg)
	}
	return nil
}

// RequireOneOf checks that value is one of the allowed values.
func RequireOneOf[T comparable](value T, allowed []T, errMsg string) *CommandError {
	for _, a := range allowed {
		if a == value {
			return nil
		}
	}
	return NewInvalidArgument(errMsg)
}
