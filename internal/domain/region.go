package domain

// Domain is a longitude/latitude bounding box in degrees.
type Domain struct {
	Name   string
	LonMin float64
	LonMax float64
	LatMin float64
	LatMax float64
}

// GlobalDomain is the only domain the reducer computes.
const GlobalDomain = "global"

// Domains lists the AMWG analysis domains. Regional averaging is not
// implemented; every reduction covers the whole grid.
var Domains = []Domain{
	{Name: GlobalDomain, LonMin: 0, LonMax: 360, LatMin: -90, LatMax: 90},
	{Name: "tropics", LonMin: 0, LonMax: 360, LatMin: -20, LatMax: 20},
	{Name: "southern", LonMin: 0, LonMax: 360, LatMin: -90, LatMax: -20},
	{Name: "northern", LonMin: 0, LonMax: 360, LatMin: 20, LatMax: 90},
}

// DomainByName looks up one of the predefined domains.
func DomainByName(name string) (Domain, bool) {
	for _, d := range Domains {
		if d.Name == name {
			return d, true
		}
	}
	return Domain{}, false
}
