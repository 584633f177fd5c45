package catalog

import "errors"

var (
	// ErrBranchNotFound indicates the branch does not exist for the tenant.
	ErrBranchNotFound = errors.New("catalog: branch not found")
	// ErrServiceNotFound indicates the service does not exist for the tenant.
	ErrServiceNotFound = errors.New("catalog: service not found")
	// ErrEmployeeNotFound indicates the employee does not exist for the tenant.
	ErrEmployeeNotFound = errors.New("catalog: employee not found")
	// ErrClientNotFound indicates the client does not exist for the tenant.
	ErrClientNotFound = errors.New("catalog: client not found")
	// ErrExceptionNotFound indicates no override exists for (employee, date).
	ErrExceptionNotFound = errors.New("catalog: schedule exception not found")
)
