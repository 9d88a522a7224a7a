package web

import (
	"bytes"
	"fmt"
	"html/template"
	"image/png"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/Jonatan4444/proto-neural-zkp/img"
	"github.com/Jonatan4444/proto-neural-zkp/nnet"
)

const imageScale = 8

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NetPage handlers show the layer table with cost and latency stats.
type NetPage struct {
	*Templates
	net *Network
}

type Row struct {
	Index   int
	Info    nnet.LayerInfo
	Latency template.HTML
}

func NewNetPage(t *Templates, net *Network) *NetPage {
	p := &NetPage{net: net}
	p.Templates = t.Clone().Select("/net")
	p.AddOption(Link{Name: "run", Url: "/net/run"})
	return p
}

// Handler function for the main layer table page
func (p *NetPage) Base() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		p.net.Lock()
		defer p.net.Unlock()
		if err := p.ExecuteTemplate(w, "net", p); err != nil {
			logError(w, err)
		}
	}
}

// Handler function to run one forward pass on a random input
func (p *NetPage) Run() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		p.net.Lock()
		defer p.net.Unlock()
		if err := p.net.Run(); err != nil {
			logError(w, err)
			return
		}
		http.Redirect(w, r, "/net", http.StatusFound)
	}
}

// Handler function for websocket connection
func (p *NetPage) Websocket() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		p.net.conn, err = upgrader.Upgrade(w, r, nil)
		if err != nil {
			logError(w, err)
		}
	}
}

func (p *NetPage) Heading() template.HTML {
	s := fmt.Sprintf("%s: input %v, %d runs", p.net.Model, p.net.InShape, p.net.Runs)
	if p.net.Runs > 0 {
		s += fmt.Sprintf(", %.3fms per pass", p.net.RunTime())
	}
	return template.HTML(s)
}

func (p *NetPage) Rows() []Row {
	rows := make([]Row, len(p.net.Infos()))
	for i, info := range p.net.Infos() {
		rows[i] = Row{Index: i, Info: info, Latency: p.net.Latency(i).HTML()}
	}
	return rows
}

func (p *NetPage) TotalParams() int {
	params, _ := p.net.Totals()
	return params
}

func (p *NetPage) TotalMuls() int {
	_, muls := p.net.Totals()
	return muls
}

func (p *NetPage) CostPlot(width, height int) template.HTML {
	values := make([]float64, len(p.net.Infos()))
	for i, info := range p.net.Infos() {
		values[i] = float64(info.Muls)
	}
	return writePlot(newLinePlot("muls", values), width, height)
}

func (p *NetPage) LatencyPlot(width, height int) template.HTML {
	values := make([]float64, len(p.net.Infos()))
	for i := range values {
		values[i] = p.net.Latency(i).Mean
	}
	return writePlot(newLinePlot("ms", values), width, height)
}

// ViewPage handlers show the input and per layer output tensors as heatmaps.
type ViewPage struct {
	*Templates
	net     *Network
	Channel int
}

type LayerImage struct {
	Desc  string
	Url   string
	Width int
}

func NewViewPage(t *Templates, net *Network) *ViewPage {
	p := &ViewPage{net: net}
	p.Templates = t.Clone().Select("/view")
	return p
}

// Handler function for the heatmap page
func (p *ViewPage) Base() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		p.net.Lock()
		defer p.net.Unlock()
		if ch := r.URL.Query().Get("channel"); ch != "" {
			if val, err := strconv.Atoi(ch); err == nil && val >= 0 {
				p.saveSessionInt(w, r, "channel", val)
			}
		}
		p.Channel = p.sessionInt(r, "channel", 0)
		if err := p.ExecuteTemplate(w, "view", p); err != nil {
			logError(w, err)
		}
	}
}

// Images lists the heatmap entries: index 0 is the input, then one per layer.
func (p *ViewPage) Images() []LayerImage {
	if p.net.view.input == nil {
		return nil
	}
	list := []LayerImage{{
		Desc:  fmt.Sprintf("input %v", p.net.InShape),
		Url:   "/view/img/0",
		Width: p.net.InShape[len(p.net.InShape)-1] * imageScale,
	}}
	for i, out := range p.net.view.outputs {
		dims := out.Dims()
		list = append(list, LayerImage{
			Desc:  fmt.Sprintf("%d: %s %v", i, p.net.net.Layers[i].Name(), dims),
			Url:   fmt.Sprintf("/view/img/%d", i+1),
			Width: dims[len(dims)-1] * imageScale,
		})
	}
	return list
}

// Handler function to render one captured tensor as a PNG heatmap
func (p *ViewPage) Image() func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		p.net.Lock()
		defer p.net.Unlock()
		ix, _ := strconv.Atoi(mux.Vars(r)["layer"])
		tensor := p.net.view.input
		if ix > 0 {
			if ix > len(p.net.view.outputs) {
				http.NotFound(w, r)
				return
			}
			tensor = p.net.view.outputs[ix-1]
		}
		if tensor == nil {
			http.NotFound(w, r)
			return
		}
		m := img.Heatmap(tensor, p.sessionInt(r, "channel", 0))
		if m == nil && tensor.Rank() == 1 {
			m = img.Strip(tensor)
		}
		if m == nil {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-type", "image/png")
		if err := png.Encode(w, img.Scale(m, imageScale)); err != nil {
			log.Println("encoding image:", err)
		}
	}
}

func newPlot() *plot.Plot {
	p := plot.New()
	p.X.Padding, p.Y.Padding = 0, 0
	p.X.Label.Text = "layer"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return p
}

func newLinePlot(name string, values []float64) *plot.Plot {
	plt := newPlot()
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X, pts[i].Y = float64(i), v
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		log.Println("plot error:", err)
		return plt
	}
	line.Width = 2
	line.Color = plotutil.Color(0)
	plt.Add(line)
	plt.Legend.Add(name+" ", line)
	return plt
}

func writePlot(p *plot.Plot, w, h int) template.HTML {
	var buf bytes.Buffer
	writer, err := p.WriterTo(vg.Points(float64(w)), vg.Points(float64(h)), "svg")
	if err != nil {
		log.Println("error writing plot:", err)
		return ""
	}
	if _, err = writer.WriteTo(&buf); err != nil {
		log.Println("error writing plot:", err)
		return ""
	}
	return template.HTML(buf.String())
}
