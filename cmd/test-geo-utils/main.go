package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dpup/vprofile/internal/lib/geo"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "corridor":
		handleCorridor()
	case "project":
		handleProject()
	case "intersect":
		handleIntersect()
	case "encode-polyline":
		handleEncodePolyline()
	case "decode-polyline":
		handleDecodePolyline()
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handleCorridor() {
	fs := flag.NewFlagSet("corridor", flag.ExitOnError)
	coords := fs.String("line", "", "Profile line as x1,y1,x2,y2,...")
	buffer := fs.Float64("buffer", 10, "Corridor half width")
	testX := fs.Float64("x", 0, "X of a point to test")
	testY := fs.Float64("y", 0, "Y of a point to test")

	fs.Parse(os.Args[2:])

	if *coords == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo-utils corridor --line 0,0,10,0,10,10 --buffer 1")
		fmt.Println("  test-geo-utils corridor --line 0,0,10,0 --buffer 1 --x 5 --y 0.5")
		os.Exit(1)
	}

	line := mustParseLine(*coords)
	ring, err := geo.Corridor(line, *buffer)
	if err != nil {
		log.Fatalf("Error building corridor: %v", err)
	}

	fmt.Printf("Corridor around %d vertices (buffer %.3f):\n", len(line), *buffer)
	fmt.Printf("  Ring vertices: %d\n", len(ring))
	b := ring.Bounds()
	fmt.Printf("  Bounds: (%.3f, %.3f) - (%.3f, %.3f)\n", b.MinX, b.MinY, b.MaxX, b.MaxY)
	if isSet(fs, "x") || isSet(fs, "y") {
		fmt.Printf("  Point (%.3f, %.3f) inside: %t\n", *testX, *testY, ring.Contains(*testX, *testY))
	}
	printJSON(ring)
}

func handleProject() {
	fs := flag.NewFlagSet("project", flag.ExitOnError)
	coords := fs.String("line", "", "Profile line as x1,y1,x2,y2,...")
	x := fs.Float64("x", 0, "X of the point")
	y := fs.Float64("y", 0, "Y of the point")

	fs.Parse(os.Args[2:])

	if *coords == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo-utils project --line 0,0,10,0,10,10 --x 11 --y 4")
		os.Exit(1)
	}

	line := mustParseLine(*coords)
	p := geo.Project(line, geo.Vertex{X: *x, Y: *y})

	fmt.Printf("Projection of (%.3f, %.3f):\n", *x, *y)
	fmt.Printf("  Distance along line: %.3f of %.3f\n", p.Along, line.Length())
	fmt.Printf("  Offset from line: %.3f\n", p.Offset)
	fmt.Printf("  Nearest point: (%.3f, %.3f) on segment %d\n", p.Nearest.X, p.Nearest.Y, p.Segment)
}

func handleIntersect() {
	fs := flag.NewFlagSet("intersect", flag.ExitOnError)
	profile := fs.String("line", "", "Profile line as x1,y1,x2,y2,...")
	candidate := fs.String("with", "", "Other line as x1,y1,x2,y2,...")

	fs.Parse(os.Args[2:])

	if *profile == "" || *candidate == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo-utils intersect --line 0,0,10,0 --with 3,-5,3,5")
		os.Exit(1)
	}

	line := mustParseLine(*profile)
	points := geo.Intersections(line, mustParseLine(*candidate))

	fmt.Printf("Intersections: %d\n", len(points))
	for i, p := range points {
		fmt.Printf("  %d: (%.3f, %.3f) at distance %.3f\n", i+1, p.X, p.Y, geo.DistanceAlong(line, p))
	}
}

func handleEncodePolyline() {
	fs := flag.NewFlagSet("encode-polyline", flag.ExitOnError)
	coords := fs.String("line", "", "Line as east1,north1,east2,north2,...")

	fs.Parse(os.Args[2:])

	if *coords == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo-utils encode-polyline --line -120.2,38.5,-120.95,40.7,-126.453,43.252")
		os.Exit(1)
	}

	fmt.Println(geo.EncodePolyline(mustParseLine(*coords)))
}

func handleDecodePolyline() {
	fs := flag.NewFlagSet("decode-polyline", flag.ExitOnError)
	polylineStr := fs.String("polyline", "", "Encoded polyline string")

	fs.Parse(os.Args[2:])

	if *polylineStr == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo-utils decode-polyline --polyline \"_p~iF~ps|U_ulLnnqC_mqNvxq`@\"")
		os.Exit(1)
	}

	line, err := geo.DecodePolyline(*polylineStr)
	if err != nil {
		log.Fatalf("Error decoding polyline: %v", err)
	}

	fmt.Printf("Decoded %d vertices, length %.6f:\n", len(line), line.Length())
	for i, v := range line {
		fmt.Printf("  %d: east %.5f, north %.5f\n", i+1, v.X, v.Y)
	}
}

func mustParseLine(s string) geo.Line {
	parts := strings.Split(s, ",")
	coords := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			log.Fatalf("Invalid coordinate %q: %v", part, err)
		}
		coords = append(coords, v)
	}
	line, err := geo.NewLine(coords)
	if err != nil {
		log.Fatalf("Invalid line: %v", err)
	}
	return line
}

func isSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func printJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Error encoding JSON: %v", err)
	}
	fmt.Println(string(data))
}

func printUsage() {
	fmt.Println("test-geo-utils - inspect profile geometry")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  test-geo-utils <command> [flags]")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  corridor         Build the flat-capped corridor around a line")
	fmt.Println("  project          Distance along a line of the point closest to (x, y)")
	fmt.Println("  intersect        Points where two lines meet")
	fmt.Println("  encode-polyline  Encode a line as a Google polyline")
	fmt.Println("  decode-polyline  Decode a Google polyline")
	fmt.Println("  help             Show this help")
}
