package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mmeshcher/foodiehub-client/internal/app"
)

// consoleNotifier печатает уведомления приложения в терминал.
type consoleNotifier struct {
	out io.Writer
}

func newConsoleNotifier(out io.Writer) *consoleNotifier {
	return &consoleNotifier{out: out}
}

// Notify выводит одно уведомление с префиксом его вида.
func (n *consoleNotifier) Notify(message, kind string) {
	prefix := "[ok]"
	if kind == app.NoticeError {
		prefix = "[error]"
	}
	fmt.Fprintf(n.out, "%s %s\n", prefix, message)
}

// terminalUI реализует слой представления: построчный командный цикл,
// отрисовывающий активный экран приложения текстом.
type terminalUI struct {
	app      *app.App
	in       io.Reader
	out      io.Writer
	phone    string
	category string
}

func newTerminalUI(a *app.App, in io.Reader, out io.Writer) *terminalUI {
	return &terminalUI{
		app:      a,
		in:       in,
		out:      out,
		category: "All",
	}
}

// Run выполняет командный цикл до конца ввода, команды выхода или отмены
// контекста.
func (u *terminalUI) Run(ctx context.Context) error {
	if user := u.app.Session().CurrentUser(); user != nil {
		fmt.Fprintf(u.out, "welcome back, %s\n", user.Name)
	}
	u.printHelp()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(u.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Fprintf(u.out, "[%s] > ", u.app.View())

		select {
		case <-ctx.Done():
			fmt.Fprintln(u.out, "\nbye")
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if quit := u.handle(ctx, line); quit {
				fmt.Fprintln(u.out, "bye")
				return nil
			}
		}
	}
}

// handle разбирает одну команду. Возвращает true для выхода из цикла.
func (u *terminalUI) handle(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "quit", "exit":
		return true
	case "help":
		u.printHelp()
	case "menu":
		if len(args) > 0 {
			u.category = args[0]
		}
		u.app.Navigate(app.ViewMenu)
		if _, err := u.app.FetchMenu(ctx); err == nil {
			u.renderMenu()
		}
	case "add":
		u.addToCart(args)
	case "cart":
		u.app.Navigate(app.ViewCart)
		u.renderCart()
	case "remove":
		u.removeFromCart(args)
	case "phone":
		if len(args) == 0 {
			fmt.Fprintf(u.out, "phone: %q\n", u.phone)
			return false
		}
		u.phone = args[0]
	case "checkout":
		if err := u.app.PlaceOrder(ctx, u.phone); err == nil {
			u.renderOrders(ctx)
		}
	case "orders":
		u.app.Navigate(app.ViewOrders)
		u.renderOrders(ctx)
	case "delete":
		if len(args) == 0 {
			fmt.Fprintln(u.out, "usage: delete <order-id>")
			return false
		}
		_ = u.app.DeleteOrder(ctx, args[0])
	case "login":
		if len(args) != 2 {
			fmt.Fprintln(u.out, "usage: login <email> <password>")
			return false
		}
		u.app.Navigate(app.ViewLogin)
		if err := u.app.Login(ctx, args[0], args[1]); err == nil {
			fmt.Fprintf(u.out, "logged in as %s\n", u.app.Session().CurrentUser().Name)
		}
	case "register":
		if len(args) != 4 {
			fmt.Fprintln(u.out, "usage: register <name> <email> <password> <confirm-password>")
			return false
		}
		u.app.Navigate(app.ViewRegister)
		if err := u.app.Register(ctx, args[0], args[1], args[2], args[3]); err == nil {
			fmt.Fprintf(u.out, "registered as %s\n", u.app.Session().CurrentUser().Name)
		}
	case "logout":
		u.app.Logout()
		fmt.Fprintln(u.out, "logged out")
	default:
		fmt.Fprintf(u.out, "unknown command %q, try help\n", cmd)
	}

	return false
}

func (u *terminalUI) addToCart(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(u.out, "usage: add <menu-position>")
		return
	}

	items := u.app.FilterMenu(u.category)
	pos, err := strconv.Atoi(args[0])
	if err != nil || pos < 1 || pos > len(items) {
		fmt.Fprintln(u.out, "no such menu position, run menu first")
		return
	}

	_ = u.app.AddToCart(items[pos-1])
}

func (u *terminalUI) removeFromCart(args []string) {
	if len(args) == 0 {
		fmt.Fprintln(u.out, "usage: remove <cart-position>")
		return
	}

	pos, err := strconv.Atoi(args[0])
	if err != nil || pos < 1 {
		fmt.Fprintln(u.out, "cart positions start at 1")
		return
	}

	_ = u.app.Cart().RemoveAt(pos - 1)
	u.renderCart()
}

func (u *terminalUI) renderMenu() {
	items := u.app.FilterMenu(u.category)
	fmt.Fprintf(u.out, "menu (%s):\n", u.category)
	if len(items) == 0 {
		fmt.Fprintln(u.out, "  nothing in this category")
		return
	}
	for i, item := range items {
		fmt.Fprintf(u.out, "  %d. %s — %s\n", i+1, item.Name, item.Price)
	}
}

func (u *terminalUI) renderCart() {
	items := u.app.Cart().Items()
	if len(items) == 0 {
		fmt.Fprintln(u.out, "your cart is empty")
		return
	}

	fmt.Fprintln(u.out, "cart:")
	for i, item := range items {
		fmt.Fprintf(u.out, "  %d. %s — %s\n", i+1, item.Name, item.Price)
	}
	if total, err := u.app.Cart().Total(); err == nil {
		fmt.Fprintf(u.out, "total: %.2f\n", total)
	}
}

func (u *terminalUI) renderOrders(ctx context.Context) {
	orders, err := u.app.FetchOrders(ctx)
	if err != nil {
		return
	}
	if len(orders) == 0 {
		fmt.Fprintln(u.out, "no orders yet")
		return
	}

	fmt.Fprintln(u.out, "orders:")
	for _, o := range orders {
		fmt.Fprintf(u.out, "  #%s  %s  %s  total %s\n", o.ID, o.DisplayStatus(), o.OrderDate, o.TotalPrice)
		for _, item := range o.Items {
			fmt.Fprintf(u.out, "      - %s (%s)\n", item.Name, item.Price)
		}
	}
}

func (u *terminalUI) printHelp() {
	fmt.Fprint(u.out, `commands:
  menu [category]                                   show the menu (All, Pizza, Burger, Pasta, Dessert)
  add <menu-position>                               add a dish to the cart
  cart                                              show the cart
  remove <cart-position>                            remove a dish from the cart
  phone <number>                                    set the phone number for checkout
  checkout                                          place an order from the cart
  orders                                            list your orders
  delete <order-id>                                 delete an order
  login <email> <password>                          sign in
  register <name> <email> <password> <confirm>      sign up
  logout                                            sign out
  quit                                              exit
`)
}
