package challenge

import (
	"validate.email/email/headertrust"
	"validate.email/third_party/imf"
)

// addressParser adapts third_party/imf's RFC 5322 address parser to
// headertrust.AddressParser, the seam the core uses instead of
// importing a parser itself.
var addressParser = headertrust.AddressParserFunc(func(s string) (headertrust.Address, error) {
	addr, err := imf.ParseAddress(s)
	if err != nil {
		return headertrust.Address{}, err
	}
	return headertrust.Address{Name: addr.Name, Addr: addr.Addr}, nil
})
