package fastview

import (
	"context"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	channerics "github.com/niceyeti/channerics/channels"
	. "github.com/smartystreets/goconvey/convey"
)

// textView renders its view-model into a single element's text.
type textView struct {
	id      string
	updates <-chan []EleUpdate
}

func newTextView(id string) ViewBuilderFunc[string] {
	return func(done <-chan struct{}, vm <-chan string) ViewComponent {
		tv := &textView{id: id}
		tv.updates = channerics.Convert(done, vm, func(s string) []EleUpdate {
			return []EleUpdate{{EleId: tv.id, Ops: []Op{{Key: TextContent, Value: s}}}}
		})
		return tv
	}
}

func (tv *textView) Updates() <-chan []EleUpdate {
	return tv.updates
}

func (tv *textView) Parse(t *template.Template) (string, error) {
	_, err := t.Parse(`{{ define "` + tv.id + `" }}<p id="` + tv.id + `">{{ . }}</p>{{ end }}`)
	return tv.id, err
}

func TestViewBuilder(t *testing.T) {
	Convey("Given a view builder", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		Convey("Build fails without views or a model", func() {
			_, err := NewViewBuilder[int, string]().Build()
			So(err, ShouldEqual, ErrNoViews)

			_, err = NewViewBuilder[int, string]().
				WithView(newTextView("a")).
				Build()
			So(err, ShouldEqual, ErrNoModel)
		})

		Convey("Every view receives every converted item, in order", func() {
			input := make(chan int)
			views, err := NewViewBuilder[int, string]().
				WithContext(ctx).
				WithModel(input, strconv.Itoa).
				WithView(newTextView("first")).
				WithView(newTextView("second")).
				Build()
			So(err, ShouldBeNil)
			So(len(views), ShouldEqual, 2)

			go func() {
				defer close(input)
				for i := 0; i < 3; i++ {
					input <- i
				}
			}()

			// Broadcast requires every output to be drained.
			results := make([][]string, len(views))
			done := make(chan struct{})
			for i, view := range views {
				go func(i int, view ViewComponent) {
					for updates := range view.Updates() {
						results[i] = append(results[i], updates[0].Ops[0].Value)
					}
					done <- struct{}{}
				}(i, view)
			}
			<-done
			<-done

			So(results[0], ShouldResemble, []string{"0", "1", "2"})
			So(results[1], ShouldResemble, []string{"0", "1", "2"})
		})

		Convey("Views parse into a parent template", func() {
			views, err := NewViewBuilder[int, string]().
				WithContext(ctx).
				WithModel(make(chan int), strconv.Itoa).
				WithView(newTextView("status")).
				Build()
			So(err, ShouldBeNil)

			parent := template.New("page")
			name, err := views[0].Parse(parent)
			So(err, ShouldBeNil)
			_, err = parent.Parse(`{{ template "` + name + `" . }}`)
			So(err, ShouldBeNil)

			sb := &strings.Builder{}
			So(parent.Execute(sb, "ready"), ShouldBeNil)
			So(sb.String(), ShouldEqual, `<p id="status">ready</p>`)
		})
	})
}

func TestClient(t *testing.T) {
	Convey("Given a client publishing a finite stream of updates", t, func() {
		updates := make(chan []EleUpdate)
		syncErr := make(chan error, 1)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cli, err := NewClient(updates, w, r)
			if err != nil {
				syncErr <- err
				return
			}
			syncErr <- cli.Sync()
		}))
		defer srv.Close()

		url := "ws" + strings.TrimPrefix(srv.URL, "http")
		conn, _, err := websocket.DefaultDialer.Dial(url, nil)
		So(err, ShouldBeNil)
		defer conn.Close()

		go func() {
			defer close(updates)
			for i := 0; i < 50; i++ {
				updates <- []EleUpdate{{EleId: "n", Ops: []Op{{Key: TextContent, Value: strconv.Itoa(i)}}}}
			}
		}()

		Convey("The last update always reaches the client, then the socket closes normally", func() {
			var received [][]EleUpdate
			for {
				var batch []EleUpdate
				if err := conn.ReadJSON(&batch); err != nil {
					So(websocket.IsCloseError(err, websocket.CloseNormalClosure), ShouldBeTrue)
					break
				}
				received = append(received, batch)
			}

			So(received, ShouldNotBeEmpty)
			So(len(received), ShouldBeLessThan, 50)
			last := received[len(received)-1]
			So(last[0].Ops[0].Value, ShouldEqual, "49")
			So(<-syncErr, ShouldBeNil)
		})
	})
}
