package panel

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	pageHost   = "host"
	pagePanel  = "slog-panel"
	pageToggle = "slog-toggle"

	panelWidth  = 72
	panelHeight = 20
)

var levelColors = map[string]string{
	"log":   "#61dafb",
	"error": "#ff6b6b",
	"info":  "#4ecdc4",
}

// Drawer schedules UI updates on the event loop. *tview.Application
// satisfies it.
type Drawer interface {
	QueueUpdateDraw(f func()) *tview.Application
}

// View renders a Panel as a floating terminal widget over a host
// primitive: a "Logs" badge while hidden, and a framed list with Clear and
// Export controls while shown. Ctrl+L toggles it; Enter on an entry with
// details expands or collapses it.
type View struct {
	panel     *Panel
	app       Drawer
	exportDir string

	pages  *tview.Pages
	frame  *tview.Flex
	tree   *tview.TreeView
	root   *tview.TreeNode
	status *tview.TextView

	// follow keeps the newest entry selected; it is dropped while the user
	// has moved the selection up and restored when they return to the end.
	follow bool

	// Changes are coalesced into updates and drawn by a single worker
	// until done is closed.
	updates   chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// NewView builds the widget. app may be nil, in which case changes are
// rendered synchronously (useful in tests). Exports are written to
// exportDir.
func NewView(p *Panel, app Drawer, host tview.Primitive, exportDir string) *View {
	if host == nil {
		host = tview.NewBox()
	}
	v := &View{
		panel:     p,
		app:       app,
		exportDir: exportDir,
		pages:     tview.NewPages(),
		root:      tview.NewTreeNode("entries"),
		status:    tview.NewTextView().SetDynamicColors(true),
		follow:    true,
		updates:   make(chan struct{}, 1),
		done:      make(chan struct{}),
	}

	v.tree = tview.NewTreeView().
		SetRoot(v.root).
		SetTopLevel(1).
		SetGraphics(false)
	v.tree.SetSelectedFunc(v.onSelect)
	v.tree.SetChangedFunc(func(node *tview.TreeNode) {
		v.follow = v.isLast(node)
	})

	title := tview.NewTextView().SetDynamicColors(true).SetText("[::b]sLog Console")
	clearBtn := tview.NewButton("Clear").SetSelectedFunc(v.clear)
	exportBtn := tview.NewButton("Export").SetSelectedFunc(v.export)

	header := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(title, 0, 1, false).
		AddItem(clearBtn, 7, 0, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(exportBtn, 8, 0, false)

	v.frame = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 1, 0, false).
		AddItem(v.tree, 0, 1, true).
		AddItem(v.status, 1, 0, false)
	v.frame.SetBorder(true)
	v.frame.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyEscape:
			v.panel.Toggle()
			return nil
		case tcell.KeyCtrlX:
			v.clear()
			return nil
		case tcell.KeyCtrlE:
			v.export()
			return nil
		}
		return event
	})

	badge := tview.NewTextView().SetText(" 🪵 Logs ")
	badge.SetBackgroundColor(tcell.ColorDimGray)

	v.pages.AddPage(pageHost, host, true, true)
	v.pages.AddPage(pageToggle, floating(badge, 10, 1), true, true)
	v.pages.AddPage(pagePanel, floating(v.frame, panelWidth, panelHeight), true, false)
	v.pages.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyCtrlL {
			v.panel.Toggle()
			return nil
		}
		return event
	})

	p.OnChange(v.schedule)
	v.Refresh()
	if app != nil {
		go v.drawLoop()
	}
	return v
}

// floating anchors p at the bottom-right corner.
func floating(p tview.Primitive, width, height int) tview.Primitive {
	column := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(p, height, 0, true).
		AddItem(nil, 1, 0, false)
	return tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(nil, 0, 1, false).
		AddItem(column, width, 0, true).
		AddItem(nil, 2, 0, false)
}

// Primitive returns the root primitive to hand to the application.
func (v *View) Primitive() tview.Primitive {
	return v.pages
}

func (v *View) schedule() {
	if v.app == nil {
		v.Refresh()
		return
	}
	select {
	case v.updates <- struct{}{}:
	default:
	}
}

func (v *View) drawLoop() {
	for {
		select {
		case <-v.done:
			return
		case <-v.updates:
			select {
			case <-v.done:
				return
			default:
			}
			v.app.QueueUpdateDraw(v.Refresh)
		}
	}
}

// Close stops drawing panel changes. Call it before stopping the
// application; the panel itself keeps working.
func (v *View) Close() {
	v.closeOnce.Do(func() {
		close(v.done)
	})
}

// Refresh rebuilds the entry list from the panel. It must run on the UI
// goroutine.
func (v *View) Refresh() {
	selected := v.selectedIndex()
	entries := v.panel.Entries()

	v.root.ClearChildren()
	var current *tview.TreeNode
	for i, e := range entries {
		node := tview.NewTreeNode(entryText(e)).
			SetReference(i).
			SetSelectable(true).
			SetExpanded(e.Expanded)
		if e.HasDetails() {
			for _, line := range strings.Split(e.Detail, "\n") {
				node.AddChild(tview.NewTreeNode("  " + tview.Escape(line)).
					SetReference(i).
					SetColor(tcell.ColorLightGray))
			}
		}
		v.root.AddChild(node)
		if i == selected {
			current = node
		}
	}

	children := v.root.GetChildren()
	if len(children) > 0 && (v.follow || current == nil) {
		current = children[len(children)-1]
	}
	v.tree.SetCurrentNode(current)

	if v.panel.Visible() {
		v.pages.ShowPage(pagePanel)
		v.pages.HidePage(pageToggle)
	} else {
		v.pages.HidePage(pagePanel)
		v.pages.ShowPage(pageToggle)
	}
}

func entryText(e Entry) string {
	color, ok := levelColors[e.Class]
	if !ok {
		color = "white"
	}
	text := fmt.Sprintf("[%s]%s[-]", color, tview.Escape(e.Text))
	if label := e.ToggleLabel(); label != "" {
		text += "  [::u]" + label + "[::-]"
	}
	return text
}

func (v *View) selectedIndex() int {
	node := v.tree.GetCurrentNode()
	if node == nil {
		return -1
	}
	if i, ok := node.GetReference().(int); ok {
		return i
	}
	return -1
}

func (v *View) isLast(node *tview.TreeNode) bool {
	children := v.root.GetChildren()
	if node == nil || len(children) == 0 {
		return true
	}
	i, ok := node.GetReference().(int)
	return ok && i == len(children)-1
}

func (v *View) onSelect(node *tview.TreeNode) {
	i, ok := node.GetReference().(int)
	if !ok {
		return
	}
	if _, err := v.panel.ToggleDetails(i); err != nil {
		v.status.SetText("[gray]" + tview.Escape(err.Error()))
	}
}

func (v *View) clear() {
	v.panel.Clear()
	v.follow = true
	v.status.SetText("[gray]cleared")
}

func (v *View) export() {
	path, err := v.panel.SaveExport(v.exportDir)
	if err != nil {
		v.status.SetText("[red]" + tview.Escape(err.Error()))
		return
	}
	v.status.SetText("[green]exported to " + tview.Escape(path))
}

// Status returns the text of the status line.
func (v *View) Status() string {
	return v.status.GetText(true)
}
