package common

// DefaultSlotKey is the slot holding the encoded user collection. The value
// matches the key used by the mobile app so existing data stays readable.
const DefaultSlotKey = "provas"

// DefaultCatalogCollection is the remote collection holding catalog exams.
const DefaultCatalogCollection = "Provas"

// DisplayDateLayout renders remote timestamp values as display dates.
const DisplayDateLayout = "02/01/2006"
