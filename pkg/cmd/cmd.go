//
//  Copyright 2023 PayPal Inc.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

// Package cmd is a small framework for programs made of named sub-commands,
// each with its own options and usage page.
package cmd

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"kinetic/pkg/glog"
	"kinetic/pkg/version"
)

var (
	commands           = make(map[string]ICommand)
	groups             = make(map[string]*Group)
	notGroupedCommands []ICommand
)

type (
	ICommand interface {
		GetName() string
		GetDesc() string //get short description
		GetSynopsis() string
		GetDetails() string
		GetOptionDesc() string
		GetExample() string
		AddExample(cmdExample string, desc string)
		AddDetails(txt string)
		Init(name string, desc string)
		Exec()
		Parse(args []string) error
		PrintUsage()
	}

	Command struct {
		Option
		name        string
		desc        string //short description. (one line)
		synopsis    string
		details     string
		examples    string
		environ     string
		optLogLevel string
	}

	Group struct {
		cmds []ICommand
		name string
	}
)

func (c *Command) Init(name string, desc string) {
	c.name = name
	c.desc = desc
	c.Option.Init(name, flag.ExitOnError)
	c.StringOption(&c.optLogLevel, "log-level", "warning", "one of error, warning, info, debug and verbose")
	c.Option.Usage = c.PrintUsage
}

func (c *Command) SetSynopsis(str string) {
	c.synopsis = str
}

func (c *Command) GetName() string {
	return c.name
}

func (c *Command) GetDesc() string {
	return c.desc
}

func (c *Command) GetSynopsis() string {
	return c.synopsis
}

func (c *Command) GetDetails() string {
	return c.details
}

func (c *Command) GetExample() string {
	return c.examples
}

func (c *Command) AddExample(cmdExample string, desc string) {
	c.examples += desc + "\n\t\t" + cmdExample + "\n\n"
}

func (c *Command) AddDetails(txt string) {
	c.details += txt
}

// AddEnvironment documents an environment variable read by the command.
func (c *Command) AddEnvironment(name string, desc string) {
	c.environ += "\t" + name + "\t" + desc + "\n"
}

func (c *Command) GetEnvironment() string {
	return c.environ
}

func (c *Command) Write(w io.Writer) {
	wo := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	err := usageTemplate.Execute(wo, c)
	if err != nil {
		fmt.Fprintln(w, err)
	}
	wo.Flush()
}

func (c *Command) PrintUsage() {
	c.Write(os.Stdout)
}

// Parse parses the command options and sets up logging at the requested
// level.
func (c *Command) Parse(arguments []string) (err error) {
	if err = c.Option.Parse(arguments); err == nil {
		glog.InitLogging(c.optLogLevel, c.name)
	}
	return
}

// RegisterNewGroup registers cmds under a named group shown together in the
// program usage. Commands whose name is taken are skipped.
func RegisterNewGroup(name string, cmds ...ICommand) *Group {
	if _, found := groups[name]; found {
		glog.Warningf("command group %s already registered", name)
		return nil
	}
	grp := &Group{name: name}
	for _, c := range cmds {
		if err := register(c); err != nil {
			glog.Warning(err)
			continue
		}
		grp.cmds = append(grp.cmds, c)
	}
	groups[name] = grp
	return grp
}

// Register adds a command outside any group.
func Register(c ICommand) bool {
	if err := register(c); err != nil {
		glog.Warning(err)
		return false
	}
	notGroupedCommands = append(notGroupedCommands, c)
	return true
}

func register(c ICommand) error {
	name := c.GetName()
	if _, found := commands[name]; found {
		return fmt.Errorf("command %s already registered", name)
	}
	commands[name] = c
	return nil
}

func GetCommand(name string) ICommand {
	return commands[name]
}

// ParseCommandLine finds the first registered command name in args and
// returns it with the remaining arguments. Arguments before the command
// name are kept in front.
func ParseCommandLine(args []string) (cmd ICommand, rest []string) {
	for i, arg := range args {
		if cmd = GetCommand(arg); cmd != nil {
			rest = append(rest, args[i+1:]...)
			return
		}
		rest = append(rest, arg)
	}
	return
}

func Write(w io.Writer) {
	progName := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "\nUSAGE\n  %s [-version] [<command> [options] [<args>]] \n\n", progName)
	WriteCommand(w)
}

func WriteCommand(w io.Writer) {
	if len(groups)+len(notGroupedCommands) == 0 {
		return
	}
	fmt.Fprintln(w, "\nCOMMAND")

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", name)
		for _, c := range groups[name].cmds {
			fmt.Fprintf(w, "    * %s\n      %s\n", c.GetName(), c.GetDesc())
		}
	}
	if len(notGroupedCommands) != 0 {
		if len(groups) != 0 {
			fmt.Fprintln(w, "  others")
		}
		for _, c := range notGroupedCommands {
			fmt.Fprintf(w, "    * %s\n      %s\n", c.GetName(), c.GetDesc())
		}
	}
}

func PrintUsage() {
	Write(os.Stdout)
}

// PrintVersionOrUsage handles a command line that names no command.
func PrintVersionOrUsage(args []string) {
	var option Option
	var displayVersion bool
	option.Init("", flag.ContinueOnError)
	option.BoolOption(&displayVersion, "version", false, "display version info.")
	option.Usage = PrintUsage
	if err := option.Parse(args); err == nil {
		if displayVersion {
			version.PrintVersionInfo()
		} else {
			PrintUsage()
		}
	}
}
