package protocol

// Table identifies the payload kind of a data push. The set is closed; the
// ingest handler switches exhaustively over these values.
type Table string

const (
	TableAttLog    Table = "ATTLOG"
	TableAttPhoto  Table = "ATTPHOTO"
	TableOperLog   Table = "OPERLOG"
	TableBioData   Table = "BIODATA"
	TableFace      Table = "FACE"
	TableFingerTmp Table = "FINGERTMP"
)

// ParseTable maps the raw table query parameter to its variant. Unknown
// values return ok=false and are acknowledged without processing.
func ParseTable(s string) (Table, bool) {
	switch Table(s) {
	case TableAttLog, TableAttPhoto, TableOperLog, TableBioData, TableFace, TableFingerTmp:
		return Table(s), true
	default:
		return "", false
	}
}

// IsTemplate reports whether the table carries a biometric template payload.
func (t Table) IsTemplate() bool {
	return t == TableBioData || t == TableFace || t == TableFingerTmp
}
