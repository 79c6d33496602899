package domain

// Operation names a catalog action subject to authorization.
type Operation string

const (
	OpCreateSweet   Operation = "sweet:create"
	OpListSweets    Operation = "sweet:list"
	OpSearchSweets  Operation = "sweet:search"
	OpGetSweet      Operation = "sweet:get"
	OpUpdateSweet   Operation = "sweet:update"
	OpDeleteSweet   Operation = "sweet:delete"
	OpPurchaseSweet Operation = "sweet:purchase"
	OpRestockSweet  Operation = "sweet:restock"
)

var (
	adminOnly     = []string{RoleAdmin}
	authenticated = []string{RoleUser, RoleAdmin}
)

// policy is the static operation→role table. Operations missing from it are denied.
var policy = map[Operation][]string{
	OpCreateSweet:   adminOnly,
	OpUpdateSweet:   adminOnly,
	OpDeleteSweet:   adminOnly,
	OpRestockSweet:  adminOnly,
	OpListSweets:    authenticated,
	OpSearchSweets:  authenticated,
	OpGetSweet:      authenticated,
	OpPurchaseSweet: authenticated,
}

// Permits reports whether role may perform op.
func Permits(role string, op Operation) bool {
	for _, r := range policy[op] {
		if r == role {
			return true
		}
	}
	return false
}

// Authorize returns ErrForbidden unless role may perform op.
func Authorize(role string, op Operation) error {
	if !Permits(role, op) {
		return ErrForbidden
	}
	return nil
}
