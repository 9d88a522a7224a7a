// Command web serves the network inspection dashboard.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"k8s.io/klog/v2"

	"github.com/Jonatan4444/proto-neural-zkp/blobs"
	"github.com/Jonatan4444/proto-neural-zkp/nnet"
	"github.com/Jonatan4444/proto-neural-zkp/web"
)

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	log := klog.FromContext(ctx)

	listen := ":8080"
	store := nnet.DataDir
	shape := "1,28,28"
	user := os.Getenv("DASH_USER")
	password := os.Getenv("DASH_PASSWORD")
	flag.StringVar(&listen, "listen", listen, "listen address")
	flag.StringVar(&store, "store", store, "model store: directory or gs:// bucket")
	flag.StringVar(&shape, "shape", shape, "input tensor shape")
	flag.Parse()
	if flag.NArg() < 1 {
		return fmt.Errorf("usage: web [opts] <model>")
	}
	model := flag.Arg(0)

	conf, err := blobs.LoadNetworkConfig(ctx, blobs.ForLocation(store), model+".net")
	if err != nil {
		return err
	}

	inShape, err := parseShape(shape)
	if err != nil {
		return err
	}
	net, err := web.NewNetwork(conf, inShape)
	if err != nil {
		return err
	}

	t, err := web.NewTemplates()
	if err != nil {
		return err
	}
	t.AddMenuItem(web.Link{Name: "network", Url: "/net"})
	t.AddMenuItem(web.Link{Name: "outputs", Url: "/view"})

	netPage := web.NewNetPage(t.Clone(), net)
	viewPage := web.NewViewPage(t.Clone(), net)

	r := mux.NewRouter()
	r.Handle("/", http.RedirectHandler("/net", http.StatusFound))
	r.HandleFunc("/net", netPage.Base())
	r.HandleFunc("/net/run", netPage.Run())
	r.HandleFunc("/ws", netPage.Websocket())
	r.HandleFunc("/view", viewPage.Base())
	r.HandleFunc("/view/img/{layer:[0-9]+}", viewPage.Image())

	var handler http.Handler = r
	if user != "" && password != "" {
		handler = web.NewAuthMiddleware(user, password).Middleware(r)
	} else {
		log.Info("DASH_USER/DASH_PASSWORD not set, dashboard is unauthenticated")
	}

	log.Info("serving dashboard", "model", model, "listen", listen)
	return http.ListenAndServe(listen, handler)
}

func parseShape(shape string) ([]int, error) {
	var dims []int
	for _, field := range strings.Split(shape, ",") {
		d, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return nil, fmt.Errorf("invalid shape %q: %w", shape, err)
		}
		dims = append(dims, d)
	}
	return dims, nil
}
