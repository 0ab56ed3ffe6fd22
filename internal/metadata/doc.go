// Package metadata reads and writes the artwork record file.
//
// The file is a JSON array of records, newest last:
//
//	[
//	    {
//	        "uid": "00001",
//	        "Name": "Mount_Rainier",
//	        "Path": "DEMs/MountRainier.tif",
//	        "Country": "USA",
//	        "Latitude": 46.8523,
//	        "Longitude": -121.7603,
//	        "Radius": 10,
//	        "Levels": 50,
//	        "Type": "gif reverse",
//	        "max_color": "#0BBCD6",
//	        "min_color": "#340B0B",
//	        "line_kwargs": {"linewidths": 0.25, "cmap": "viridis"}
//	    }
//	]
//
// Records are found by Name or uid:
//
//	store, err := metadata.Open("data/metadata.json")
//	art, err := store.Locate("Mount_Rainier")
//	var lerr *metadata.LookupError
//	if errors.As(err, &lerr) {
//		// zero or several matches, listed in lerr.Matches
//	}
//
// New records can be created from a map link such as
// "Mount+Rainier/@46.8523,-121.7603,12z" with NewRecordFromMapsURL.
package metadata
