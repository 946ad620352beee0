package seed

//go:generate go run github.com/dmarkham/enumer -type Kind -trimprefix Kind -transform lower -output kind.gen.go

// Kind names a section of the seed file
type Kind int

const (
	KindPermission Kind = iota
	KindMenu
	KindModule
	KindGroup
	KindUser
	KindGrant
)
